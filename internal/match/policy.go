// Package match decides which listings are new for a subscription.
package match

import (
	"context"
	"time"

	"listing_bot/internal/model"
	"listing_bot/internal/storage"
)

// Policy holds the dedup watermark semantics. Matching itself is exact
// string equality on the subscription's source URL, performed by the store
// query; stored URLs are already canonical.
type Policy struct {
	// Lookback bounds the first-ever delivery window for a subscription
	// that has never been delivered to, so a fresh subscription does not
	// replay the whole listing history.
	Lookback time.Duration
}

// NewListingsFor returns the batch of listings judged new for sub at the
// reference instant now, oldest first.
func (p Policy) NewListingsFor(ctx context.Context, store storage.Storage, sub model.Subscription, now time.Time) ([]model.Listing, error) {
	watermark := now.Add(-p.Lookback)
	if sub.LastDeliveredAt != nil {
		watermark = *sub.LastDeliveredAt
	}
	return store.ListingsSince(ctx, sub.SourceURL, watermark)
}
