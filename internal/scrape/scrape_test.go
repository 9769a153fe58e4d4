package scrape

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"listing_bot/internal/model"
)

type mockTransport struct {
	mu         sync.Mutex
	body       string
	statusCode int
	err        error
	failuresN  int // fail this many requests before succeeding
	requests   int
}

func (m *mockTransport) Do(_ *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	if m.failuresN > 0 {
		m.failuresN--
		return nil, io.ErrUnexpectedEOF
	}
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

func loadFixture(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test-only fixture loading
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return string(data)
}

func TestFetchCards(t *testing.T) {
	html := loadFixture(t, "../../testdata/search.html")
	transport := &mockTransport{body: html, statusCode: 200}

	s := New(transport)
	cards, err := s.FetchCards(context.Background(), "https://www.olx.pl/search")
	if err != nil {
		t.Fatalf("FetchCards() error: %v", err)
	}

	want := []model.RawCard{
		{
			Title:      "Kawalerka Mokotów",
			Price:      "2500 zł",
			Location:   "Warszawa, Mokotów - ",
			ListedTime: "16:20",
			DetailURL:  "/d/oferta/kawalerka-mokotow-CID3-ID1aBcD.html",
			ImageURL:   "https://ireland.apollo.olxcdn.com/v1/files/abc123/image;s=400x300",
		},
		{
			Title:      "Dwupokojowe Wola",
			Price:      "3 800 zł",
			Location:   "Warszawa, Wola - ",
			ListedTime: "09:05",
			DetailURL:  "https://www.otodom.pl/pl/oferta/dwupokojowe-wola-ID4iJkL",
		},
	}
	if diff := cmp.Diff(want, cards); diff != "" {
		t.Errorf("cards mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchCardsSkipsNonToday(t *testing.T) {
	html := loadFixture(t, "../../testdata/search.html")
	transport := &mockTransport{body: html, statusCode: 200}

	s := New(transport)
	cards, err := s.FetchCards(context.Background(), "https://www.olx.pl/search")
	if err != nil {
		t.Fatalf("FetchCards() error: %v", err)
	}
	for _, c := range cards {
		if c.Title == "Stare ogłoszenie" {
			t.Error("card with a date instead of today's time must be skipped")
		}
		if c.Title == "Karta bez odnośnika" {
			t.Error("card without a detail link must be skipped")
		}
	}
}

func TestFetchCardsEmptyPage(t *testing.T) {
	transport := &mockTransport{body: "<html><body><p>Nie znaleźliśmy ogłoszeń</p></body></html>", statusCode: 200}

	s := New(transport)
	cards, err := s.FetchCards(context.Background(), "https://www.olx.pl/search")
	if err != nil {
		t.Fatalf("FetchCards() error: %v", err)
	}
	if len(cards) != 0 {
		t.Errorf("got %d cards from a page without results, want 0", len(cards))
	}
}

func TestFetchCardsRetriesTransientFailure(t *testing.T) {
	html := loadFixture(t, "../../testdata/search.html")
	transport := &mockTransport{body: html, statusCode: 200, failuresN: 1}

	s := New(transport)
	cards, err := s.FetchCards(context.Background(), "https://www.olx.pl/search")
	if err != nil {
		t.Fatalf("FetchCards() error after retry: %v", err)
	}
	if len(cards) == 0 {
		t.Error("expected cards from the retried fetch")
	}
	if transport.requests != 2 {
		t.Errorf("got %d requests, want 2", transport.requests)
	}
}

func TestFetchCardsGivesUp(t *testing.T) {
	transport := &mockTransport{failuresN: 10}

	s := New(transport)
	if _, err := s.FetchCards(context.Background(), "https://www.olx.pl/search"); err == nil {
		t.Fatal("FetchCards() succeeded although every request failed")
	}
	if transport.requests != 3 {
		t.Errorf("got %d requests, want 3 (initial attempt plus two retries)", transport.requests)
	}
}

func TestFetchCardsHTTPError(t *testing.T) {
	transport := &mockTransport{body: "blocked", statusCode: 403}

	s := New(transport)
	if _, err := s.FetchCards(context.Background(), "https://www.olx.pl/search"); err == nil {
		t.Fatal("FetchCards() succeeded on a 403 response")
	}
}

func TestFetchDescription(t *testing.T) {
	transport := &mockTransport{
		body:       `<html><body><div data-cy="ad_description"><h3>Opis</h3> Przytulna kawalerka blisko metra. </div></body></html>`,
		statusCode: 200,
	}

	s := New(transport)
	desc, err := s.FetchDescription(context.Background(), "https://www.olx.pl/d/oferta/x.html")
	if err != nil {
		t.Fatalf("FetchDescription() error: %v", err)
	}
	want := "Opis Przytulna kawalerka blisko metra."
	if desc != want {
		t.Errorf("description = %q, want %q", desc, want)
	}
}

func TestFetchDescriptionMissing(t *testing.T) {
	transport := &mockTransport{body: "<html><body></body></html>", statusCode: 200}

	s := New(transport)
	desc, err := s.FetchDescription(context.Background(), "https://www.olx.pl/d/oferta/x.html")
	if err != nil {
		t.Fatalf("FetchDescription() error: %v", err)
	}
	if desc != "" {
		t.Errorf("description = %q, want empty", desc)
	}
}
