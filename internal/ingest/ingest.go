// Package ingest runs the scraping side: it walks every watched source URL,
// normalizes the scraped cards and saves the resulting listings.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"listing_bot/internal/model"
	"listing_bot/internal/normalize"
	"listing_bot/internal/storage"
)

// Scraper is the raw HTML fetch/parse boundary.
type Scraper interface {
	FetchCards(ctx context.Context, url string) ([]model.RawCard, error)
	FetchDescription(ctx context.Context, url string) (string, error)
}

// Ingester periodically discovers new listings for all watched source URLs.
// It runs independently of the delivery scheduler; the listing table's
// insert idempotency on detail_url makes the two safe to run concurrently.
type Ingester struct {
	store     storage.Storage
	scraper   Scraper
	log       *slog.Logger
	normalize normalize.Config

	tick      time.Duration
	retention time.Duration
}

// New creates an Ingester. retention controls how old a listing may grow
// before the housekeeping purge removes it; zero disables purging.
func New(store storage.Storage, scraper Scraper, log *slog.Logger, cfg normalize.Config, tick, retention time.Duration) *Ingester {
	return &Ingester{
		store:     store,
		scraper:   scraper,
		log:       log,
		normalize: cfg,
		tick:      tick,
		retention: retention,
	}
}

// Run starts the ingestion loop, blocking until ctx is cancelled.
func (i *Ingester) Run(ctx context.Context) {
	i.runCycle(ctx)

	ticker := time.NewTicker(i.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.runCycle(ctx)
		}
	}
}

func (i *Ingester) runCycle(ctx context.Context) {
	urls, err := i.store.SourceURLs(ctx)
	if err != nil {
		i.log.Error("list source urls", "error", err)
		return
	}

	for _, url := range urls {
		if ctx.Err() != nil {
			return
		}
		if err := i.ingestSource(ctx, url); err != nil {
			i.log.Error("ingest source", "source_url", url, "error", err)
		}
	}

	i.purge(ctx)
}

// ingestSource scrapes one search URL and saves its normalized listings.
// Malformed cards are dropped individually; the rest of the batch survives.
func (i *Ingester) ingestSource(ctx context.Context, sourceURL string) error {
	cards, err := i.scraper.FetchCards(ctx, sourceURL)
	if err != nil {
		return err
	}

	now := time.Now()
	saved := 0
	for _, card := range cards {
		listing, err := normalize.Card(card, sourceURL, now, i.normalize)
		if err != nil {
			if errors.Is(err, normalize.ErrParse) {
				i.log.Warn("drop card", "source_url", sourceURL, "title", card.Title, "error", err)
				continue
			}
			return err
		}

		// Passthrough platform links keep their own description page;
		// only native listings get a detail fetch.
		if listing.Source == model.SourceOLX && listing.Description == "" {
			desc, err := i.scraper.FetchDescription(ctx, listing.DetailURL)
			if err != nil {
				i.log.Warn("fetch description", "detail_url", listing.DetailURL, "error", err)
			} else {
				listing.Description = desc
			}
		}

		if err := i.store.SaveListing(ctx, listing); err != nil {
			return err
		}
		saved++
	}

	if saved > 0 {
		i.log.Info("ingested listings", "source_url", sourceURL, "count", saved)
	}
	return nil
}

func (i *Ingester) purge(ctx context.Context) {
	if i.retention <= 0 {
		return
	}
	n, err := i.store.DeleteListingsOlderThan(ctx, time.Now().Add(-i.retention))
	if err != nil {
		i.log.Error("purge listings", "error", err)
		return
	}
	if n > 0 {
		i.log.Info("purged old listings", "count", n)
	}
}
