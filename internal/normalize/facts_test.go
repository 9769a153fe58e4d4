package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"listing_bot/internal/model"
)

func TestParseFacts(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        model.Facts
	}{
		{
			name:        "full fact set",
			description: "price: 2000\ndeposit: 1000\nanimals_allowed: true\nrent: 300",
			want: model.Facts{
				PriceAmount:        2000,
				DepositAmount:      1000,
				ExtraMonthlyCharge: 300,
				Pets:               model.PetsAllowed,
			},
		},
		{
			name:        "pets not allowed",
			description: "animals_allowed: false",
			want:        model.Facts{Pets: model.PetsNotAllowed},
		},
		{
			name:        "pets unknown literal",
			description: "animals_allowed: maybe",
			want:        model.Facts{Pets: model.PetsUnspecified},
		},
		{
			name:        "unrecognized lines ignored",
			description: "floor: 3\nprice: 1500\nsome free text",
			want:        model.Facts{PriceAmount: 1500, Pets: model.PetsUnspecified},
		},
		{
			name:        "last occurrence wins",
			description: "deposit: 500\ndeposit: 900",
			want:        model.Facts{DepositAmount: 900, Pets: model.PetsUnspecified},
		},
		{
			name:        "prefix is case sensitive",
			description: "Price: 2000\nDEPOSIT: 1000",
			want:        model.Facts{Pets: model.PetsUnspecified},
		},
		{
			name:        "non-numeric amount ignored",
			description: "rent: lots",
			want:        model.Facts{Pets: model.PetsUnspecified},
		},
		{
			name:        "empty description",
			description: "",
			want:        model.Facts{Pets: model.PetsUnspecified},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFacts(tt.description)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("facts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
