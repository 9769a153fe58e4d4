package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"listing_bot/internal/model"
	"listing_bot/internal/storage"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to the listing watcher bot!

Register a marketplace search URL and get notified about new listings.

Quick start:
1. /watch <url> [name] — start watching a search URL
2. /list — show your watches
3. /unwatch <name> — stop watching

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Commands:
/watch <url> [name] — watch an olx.pl search URL for new listings
/unwatch <name> — stop a watch
/list — show all your watches
/status <name> — watch details and bookkeeping timestamps

Names are 1-64 characters and may not start with '/'.
Each chat can watch a given URL only once and each name must be unique.`)
}

// handleWatch registers a new subscription. Validation happens before any
// store mutation; the store's unique constraints remain the final authority
// on duplicates.
func (b *Bot) handleWatch(ctx context.Context, chatID int64, args string) {
	if args == "" && b.cfg.DefaultSearchURL == "" {
		b.reply(chatID, "Usage: /watch <url> [name]")
		return
	}

	rawURL := b.cfg.DefaultSearchURL
	name := ""
	if args != "" {
		parts := strings.SplitN(args, " ", 2)
		rawURL = parts[0]
		if len(parts) == 2 {
			name = strings.TrimSpace(parts[1])
		}
	}

	url, err := CanonicalURL(rawURL)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("❌ %v. Try again.", err))
		return
	}
	if name == "" {
		name = defaultName(url)
	}
	if err := ValidateName(name); err != nil {
		b.reply(chatID, fmt.Sprintf("❌ %v. Try again.", err))
		return
	}

	// Pre-check duplicates for friendlier messages than a raw constraint
	// failure.
	existing, err := b.store.ListSubscriptions(ctx, chatID)
	if err != nil {
		b.reply(chatID, "Error creating watch. Please try again later.")
		return
	}
	for _, sub := range existing {
		if sub.SourceURL == url {
			b.reply(chatID, "❌ You already watch this URL. Stop the existing watch first.")
			return
		}
		if sub.Name == name {
			b.reply(chatID, "❌ You already have a watch with this name. Choose another name.")
			return
		}
	}

	sub := &model.Subscription{ChatID: chatID, Name: name, SourceURL: url}
	if err := b.store.CreateSubscription(ctx, sub); err != nil {
		switch {
		case errors.Is(err, storage.ErrDuplicateName):
			b.reply(chatID, "❌ You already have a watch with this name. Choose another name.")
		case errors.Is(err, storage.ErrDuplicateURL):
			b.reply(chatID, "❌ You already watch this URL. Stop the existing watch first.")
		default:
			b.log.Error("create subscription", "chat_id", chatID, "error", err)
			b.reply(chatID, "Error creating watch. Please try again later.")
		}
		return
	}

	b.log.Info("watch created", "chat_id", chatID, "name", name, "source_url", url)
	b.reply(chatID, fmt.Sprintf("✅ Watch %q started!\n%s\nYou'll receive updates about new listings.", name, url))
}

func (b *Bot) handleUnwatch(ctx context.Context, chatID int64, args string) {
	name := strings.TrimSpace(args)
	if name == "" {
		b.reply(chatID, "Usage: /unwatch <name>")
		return
	}

	if err := b.store.DeleteSubscription(ctx, chatID, name); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.reply(chatID, fmt.Sprintf("Watch %q not found.", name))
			return
		}
		b.log.Error("delete subscription", "chat_id", chatID, "error", err)
		b.reply(chatID, "Error stopping watch. Please try again later.")
		return
	}

	b.log.Info("watch stopped", "chat_id", chatID, "name", name)
	b.reply(chatID, fmt.Sprintf("🛑 Watch %q stopped.", name))
}

func (b *Bot) handleList(ctx context.Context, chatID int64) {
	subs, err := b.store.ListSubscriptions(ctx, chatID)
	if err != nil {
		b.log.Error("list subscriptions", "chat_id", chatID, "error", err)
		b.reply(chatID, "Error listing watches. Please try again later.")
		return
	}
	b.reply(chatID, FormatSubscriptionList(subs))
}

func (b *Bot) handleStatus(ctx context.Context, chatID int64, args string) {
	name := strings.TrimSpace(args)
	if name == "" {
		b.reply(chatID, "Usage: /status <name>")
		return
	}

	sub, err := b.store.GetSubscription(ctx, chatID, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.reply(chatID, fmt.Sprintf("Watch %q not found.", name))
			return
		}
		b.log.Error("get subscription", "chat_id", chatID, "error", err)
		b.reply(chatID, "Error. Please try again later.")
		return
	}
	b.reply(chatID, FormatSubscriptionStatus(sub))
}

// defaultName derives a watch name from the tail of the search URL.
func defaultName(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" || len(trimmed) > 64 {
		return "watch"
	}
	return trimmed
}
