package normalize

import (
	"fmt"
	"strings"
	"time"

	"listing_bot/internal/model"
)

// Config carries the fixed site parameters a normalization run needs.
type Config struct {
	// SiteOrigin is prepended to site-relative detail URLs.
	SiteOrigin string
	// TimeOffset corrects card time-of-day strings to true local time.
	TimeOffset time.Duration
}

// Card maps one raw scraped card onto a canonical Listing. sourceURL is the
// search URL the card was discovered under; now is the reference instant for
// resolving the card's relative time. A malformed card returns an error
// wrapping ErrParse so the caller can drop it without failing the batch.
func Card(card model.RawCard, sourceURL string, now time.Time, cfg Config) (*model.Listing, error) {
	if strings.TrimSpace(card.Title) == "" {
		return nil, fmt.Errorf("%w: missing title", ErrParse)
	}
	if strings.TrimSpace(card.DetailURL) == "" {
		return nil, fmt.Errorf("%w: missing detail url", ErrParse)
	}

	postedAt, err := ResolveListedTime(card.ListedTime, now, cfg.TimeOffset)
	if err != nil {
		return nil, err
	}

	detailURL, source := resolveDetailURL(card.DetailURL, cfg.SiteOrigin)

	return &model.Listing{
		DetailURL:       detailURL,
		SourceURL:       sourceURL,
		Source:          source,
		Title:           strings.TrimSpace(card.Title),
		Price:           strings.TrimSpace(card.Price),
		Location:        cleanLocation(card.Location),
		PostedAt:        postedAt,
		PostedAtDisplay: postedAt.Format("15:04"),
		ImageURL:        card.ImageURL,
		Description:     card.Description,
		FirstSeenAt:     now,
	}, nil
}

// resolveDetailURL makes a card link absolute. Links already pointing at the
// alternate platform pass through unmodified and only pick up a source tag.
func resolveDetailURL(raw, origin string) (string, model.ListingSource) {
	if strings.Contains(raw, "otodom") {
		return raw, model.SourceOtodom
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw, model.SourceOLX
	}
	return strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(raw, "/"), model.SourceOLX
}

// cleanLocation strips the trailing separator the site leaves after the
// location when the date portion is cut off.
func cleanLocation(loc string) string {
	loc = strings.TrimSpace(loc)
	loc = strings.TrimSuffix(loc, "-")
	return strings.TrimSpace(loc)
}
