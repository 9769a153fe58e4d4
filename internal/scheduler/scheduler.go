// Package scheduler drives the periodic delivery cycle: due subscriptions
// are matched against newly discovered listings and new batches are pushed
// to their chats.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"listing_bot/internal/match"
	"listing_bot/internal/model"
	"listing_bot/internal/storage"
)

// Deliverer sends one listing batch to a chat. A non-nil error means at
// least one send in the batch failed.
type Deliverer interface {
	SendBatch(ctx context.Context, chatID int64, listings []model.Listing) error
}

// Scheduler periodically fans new listings out to subscribed chats.
type Scheduler struct {
	store     storage.Storage
	policy    match.Policy
	deliverer Deliverer
	log       *slog.Logger

	tick      time.Duration
	minResend time.Duration
}

// New creates a Scheduler. tick is the sleep between cycles; minResend is
// the minimum time between delivery attempts per subscription.
func New(store storage.Storage, policy match.Policy, deliverer Deliverer, log *slog.Logger, tick, minResend time.Duration) *Scheduler {
	return &Scheduler{
		store:     store,
		policy:    policy,
		deliverer: deliverer,
		log:       log,
		tick:      tick,
		minResend: minResend,
	}
}

// SetTickInterval overrides the cycle interval.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// Run starts the scheduler loop, blocking until ctx is cancelled.
// Cancellation takes effect between cycles, never mid-subscription.
func (s *Scheduler) Run(ctx context.Context) {
	s.runCycle(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle makes one full pass over the due subscriptions. A single
// subscription's failure never aborts the rest of the pass.
func (s *Scheduler) runCycle(ctx context.Context) {
	now := time.Now()

	subs, err := s.store.DueSubscriptions(ctx, now, s.minResend)
	if err != nil {
		s.log.Error("list due subscriptions", "error", err)
		return
	}

	for _, sub := range subs {
		if ctx.Err() != nil {
			return
		}
		s.processSubscription(ctx, sub, now)
	}
}

func (s *Scheduler) processSubscription(ctx context.Context, sub model.Subscription, cycleStart time.Time) {
	s.log.Debug("checking subscription", "subscription_id", sub.ID, "name", sub.Name, "chat_id", sub.ChatID)

	batch, err := s.policy.NewListingsFor(ctx, s.store, sub, cycleStart)
	if err != nil {
		s.log.Error("collect batch", "subscription_id", sub.ID, "error", err)
		return
	}

	if len(batch) == 0 {
		s.advance(ctx, sub, cycleStart, nil)
		return
	}

	if err := s.deliverer.SendBatch(ctx, sub.ChatID, batch); err != nil {
		// The delivery watermark stays put so the whole batch is
		// retried verbatim next cycle.
		s.log.Error("deliver batch", "subscription_id", sub.ID, "count", len(batch), "error", err)
		s.advance(ctx, sub, cycleStart, nil)
		return
	}

	s.log.Info("delivered batch", "subscription_id", sub.ID, "name", sub.Name, "count", len(batch))
	s.advance(ctx, sub, cycleStart, &cycleStart)
}

func (s *Scheduler) advance(ctx context.Context, sub model.Subscription, checkedAt time.Time, deliveredAt *time.Time) {
	if err := s.store.AdvanceWatermark(ctx, sub.ID, checkedAt, deliveredAt); err != nil {
		s.log.Error("advance watermark", "subscription_id", sub.ID, "error", err)
	}
}
