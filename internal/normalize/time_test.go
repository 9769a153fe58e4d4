package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestResolveListedTime(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		raw    string
		offset time.Duration
		want   time.Time
	}{
		{
			name:   "plain time no offset",
			raw:    "14:05",
			offset: 0,
			want:   time.Date(2024, 3, 15, 14, 5, 0, 0, time.UTC),
		},
		{
			name:   "one hour correction",
			raw:    "14:05",
			offset: time.Hour,
			want:   time.Date(2024, 3, 15, 15, 5, 0, 0, time.UTC),
		},
		{
			name:   "two hour correction",
			raw:    "09:12",
			offset: 2 * time.Hour,
			want:   time.Date(2024, 3, 15, 11, 12, 0, 0, time.UTC),
		},
		{
			name:   "midnight",
			raw:    "00:00",
			offset: 0,
			want:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveListedTime(tt.raw, now, tt.offset)
			if err != nil {
				t.Fatalf("ResolveListedTime(%q): %v", tt.raw, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("resolved time mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveListedTimeKeepsReferenceDate(t *testing.T) {
	now := time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)
	got, err := ResolveListedTime("08:15", now, 0)
	if err != nil {
		t.Fatalf("ResolveListedTime: %v", err)
	}
	y, m, d := got.Date()
	if y != 2024 || m != time.December || d != 31 {
		t.Errorf("date component changed: got %v", got)
	}
}

func TestResolveListedTimeMalformed(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

	for _, raw := range []string{"", "25:00", "9:5:1", "noon", "12.30"} {
		_, err := ResolveListedTime(raw, now, 0)
		if !errors.Is(err, ErrParse) {
			t.Errorf("ResolveListedTime(%q) error = %v, want ErrParse", raw, err)
		}
	}
}
