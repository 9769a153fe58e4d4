package notify

import (
	"fmt"
	"strings"

	"listing_bot/internal/model"
	"listing_bot/internal/normalize"
)

// FormatListing formats one listing as a Markdown chat message.
func FormatListing(l model.Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏠 *%s*\n\n", l.Title)
	fmt.Fprintf(&b, "💰 *Price:* %s\n", l.Price)
	fmt.Fprintf(&b, "📍 *Location:* %s\n", l.Location)
	fmt.Fprintf(&b, "🕒 *Posted:* %s\n", l.PostedAtDisplay)

	facts := normalize.ParseFacts(l.Description)
	if facts.PriceAmount > 0 {
		fmt.Fprintf(&b, "💵 *Base rent:* %d PLN\n", facts.PriceAmount)
	}
	if facts.DepositAmount > 0 {
		fmt.Fprintf(&b, "🔐 *Deposit:* %d PLN\n", facts.DepositAmount)
	}
	switch facts.Pets {
	case model.PetsAllowed:
		b.WriteString("🐾 *Pets:* Allowed\n")
	case model.PetsNotAllowed:
		b.WriteString("🐾 *Pets:* Not allowed\n")
	}
	if facts.ExtraMonthlyCharge > 0 {
		fmt.Fprintf(&b, "📊 *Additional rent:* %d PLN\n", facts.ExtraMonthlyCharge)
	}

	fmt.Fprintf(&b, "\n🔗 [View on %s](%s)", l.Source.Label(), l.DetailURL)
	return b.String()
}
