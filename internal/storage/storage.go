// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"errors"
	"time"

	"listing_bot/internal/model"
)

// Sentinel errors surfaced by Storage implementations.
var (
	// ErrNotFound is returned when a subscription lookup matches nothing.
	ErrNotFound = errors.New("subscription not found")
	// ErrDuplicateName is returned when a chat already has a subscription
	// with the same name.
	ErrDuplicateName = errors.New("duplicate subscription name")
	// ErrDuplicateURL is returned when a chat already watches the URL.
	ErrDuplicateURL = errors.New("duplicate subscription url")
)

// Storage is the interface for all persistence operations.
type Storage interface {
	CreateSubscription(ctx context.Context, sub *model.Subscription) error
	GetSubscription(ctx context.Context, chatID int64, name string) (*model.Subscription, error)
	ListSubscriptions(ctx context.Context, chatID int64) ([]model.Subscription, error)
	DeleteSubscription(ctx context.Context, chatID int64, name string) error

	// DueSubscriptions returns subscriptions whose last delivery is absent
	// or older than minInterval relative to now.
	DueSubscriptions(ctx context.Context, now time.Time, minInterval time.Duration) ([]model.Subscription, error)

	// SaveListing inserts a listing; a pre-existing detail URL is a no-op.
	SaveListing(ctx context.Context, l *model.Listing) error
	// ListingsSince returns listings discovered under sourceURL with
	// FirstSeenAt strictly after the watermark, oldest first.
	ListingsSince(ctx context.Context, sourceURL string, watermark time.Time) ([]model.Listing, error)
	// SourceURLs returns the distinct source URLs across all subscriptions.
	SourceURLs(ctx context.Context) ([]string, error)
	// DeleteListingsOlderThan removes listings first seen before cutoff.
	DeleteListingsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// AdvanceWatermark updates LastCheckedAt always and LastDeliveredAt
	// only when deliveredAt is non-nil.
	AdvanceWatermark(ctx context.Context, subscriptionID int64, checkedAt time.Time, deliveredAt *time.Time) error

	Close() error
}
