package bot

import (
	"fmt"
	"strings"

	"listing_bot/internal/model"
)

const timeDisplay = "2006-01-02 15:04"

// FormatSubscriptionList formats a chat's watches for display.
func FormatSubscriptionList(subs []model.Subscription) string {
	if len(subs) == 0 {
		return "You have no watches yet. Use /watch <url> to add one."
	}
	var b strings.Builder
	b.WriteString("Your watches:\n")
	for _, sub := range subs {
		fmt.Fprintf(&b, "\n%s\n   %s\n", sub.Name, sub.SourceURL)
		if sub.LastDeliveredAt != nil {
			fmt.Fprintf(&b, "   last delivery: %s\n", sub.LastDeliveredAt.Format(timeDisplay))
		} else {
			b.WriteString("   no deliveries yet\n")
		}
	}
	return b.String()
}

// FormatSubscriptionStatus formats detailed information about one watch.
func FormatSubscriptionStatus(sub *model.Subscription) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Watch %q is active\n", sub.Name)
	fmt.Fprintf(&b, "URL: %s\n", sub.SourceURL)
	fmt.Fprintf(&b, "Created: %s\n", sub.CreatedAt.Format(timeDisplay))
	if sub.LastCheckedAt != nil {
		fmt.Fprintf(&b, "Last check: %s\n", sub.LastCheckedAt.Format(timeDisplay))
	} else {
		b.WriteString("Last check: never\n")
	}
	if sub.LastDeliveredAt != nil {
		fmt.Fprintf(&b, "Last delivery: %s\n", sub.LastDeliveredAt.Format(timeDisplay))
	} else {
		b.WriteString("Last delivery: never\n")
	}
	return b.String()
}
