// Package notify adapts listing batches onto the chat transport, pacing
// outbound messages and aggregating per-send failures.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"listing_bot/internal/model"
)

// summaryPhotoURL illustrates the "found N listings" notice.
const summaryPhotoURL = "https://tse4.mm.bing.net/th?id=OIG2.fso8nlFWoq9hafRkva2e&pid=ImgGn"

// Sender is the chat-transport boundary. Both methods may fail with
// transient network errors or permanent ones (e.g. recipient blocked);
// the notifier treats either the same way at the batch level.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendPhoto(ctx context.Context, chatID int64, photoURL, caption string) error
}

// Notifier sequences outbound sends for one delivery batch.
type Notifier struct {
	sender  Sender
	log     *slog.Logger
	pacing  time.Duration
	timeout time.Duration
}

// New creates a Notifier. pacing is the fixed inter-message delay; timeout
// bounds each individual send.
func New(sender Sender, log *slog.Logger, pacing, timeout time.Duration) *Notifier {
	return &Notifier{
		sender:  sender,
		log:     log,
		pacing:  pacing,
		timeout: timeout,
	}
}

// SendBatch sends a summary notice followed by one message per listing,
// newest first. A failed send is recorded but does not stop the remaining
// sends. The returned error is non-nil when any send in the batch failed;
// callers must then not advance the delivery watermark, so the whole batch
// is retried next cycle rather than silently dropping listings.
func (n *Notifier) SendBatch(ctx context.Context, chatID int64, listings []model.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	var errs []error

	summary := fmt.Sprintf("I have found %d listings, maybe one of them is what you're looking for", len(listings))
	if err := n.send(ctx, func(ctx context.Context) error {
		return n.sender.SendPhoto(ctx, chatID, summaryPhotoURL, summary)
	}); err != nil {
		errs = append(errs, fmt.Errorf("summary: %w", err))
	}

	// The store hands batches over oldest-first; recipients see the most
	// recent listing first.
	for i := len(listings) - 1; i >= 0; i-- {
		l := listings[i]
		time.Sleep(n.pacing)

		text := FormatListing(l)
		err := n.send(ctx, func(ctx context.Context) error {
			if strings.HasPrefix(l.ImageURL, "http") {
				return n.sender.SendPhoto(ctx, chatID, l.ImageURL, text)
			}
			return n.sender.SendText(ctx, chatID, text)
		})
		if err != nil {
			n.log.Error("send listing", "chat_id", chatID, "detail_url", l.DetailURL, "error", err)
			errs = append(errs, fmt.Errorf("listing %s: %w", l.DetailURL, err))
		}
	}

	return errors.Join(errs...)
}

func (n *Notifier) send(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	return fn(ctx)
}
