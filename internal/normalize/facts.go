package normalize

import (
	"strconv"
	"strings"

	"listing_bot/internal/model"
)

// Description fact-line prefixes. Matching is case-sensitive and exact.
const (
	factPrice   = "price:"
	factDeposit = "deposit:"
	factPets    = "animals_allowed:"
	factRent    = "rent:"
)

// ParseFacts scans description lines for known "key:" prefixes and builds
// the structured fact table. Unrecognized lines are ignored; when a key
// repeats, the last occurrence wins.
func ParseFacts(description string) model.Facts {
	facts := model.Facts{Pets: model.PetsUnspecified}
	for _, line := range strings.Split(description, "\n") {
		switch {
		case strings.HasPrefix(line, factPrice):
			facts.PriceAmount = parseAmount(line, factPrice)
		case strings.HasPrefix(line, factDeposit):
			facts.DepositAmount = parseAmount(line, factDeposit)
		case strings.HasPrefix(line, factRent):
			facts.ExtraMonthlyCharge = parseAmount(line, factRent)
		case strings.HasPrefix(line, factPets):
			switch strings.TrimSpace(strings.TrimPrefix(line, factPets)) {
			case "true":
				facts.Pets = model.PetsAllowed
			case "false":
				facts.Pets = model.PetsNotAllowed
			default:
				facts.Pets = model.PetsUnspecified
			}
		}
	}
	return facts
}

func parseAmount(line, prefix string) int {
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, prefix)))
	if err != nil {
		return 0
	}
	return n
}
