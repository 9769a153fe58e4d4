// Package scrape downloads marketplace search pages and extracts raw
// listing cards from them.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sethvargo/go-retry"

	"listing_bot/internal/model"
)

// todayMarker prefixes the time portion of cards posted today. Older cards
// carry a date instead and are not ingested.
const todayMarker = "Dzisiaj o "

const maxBodySize = 10 * 1024 * 1024

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Scraper fetches search pages and listing detail pages.
type Scraper struct {
	client  HTTPClient
	timeout time.Duration
}

// New creates a Scraper with the given HTTP client.
func New(client HTTPClient) *Scraper {
	return &Scraper{
		client:  client,
		timeout: 30 * time.Second,
	}
}

// FetchCards downloads the search page at url and extracts the raw cards
// posted today. Transient fetch failures are retried with capped backoff.
func (s *Scraper) FetchCards(ctx context.Context, url string) ([]model.RawCard, error) {
	var body []byte
	backoff := retry.WithMaxRetries(2, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		b, err := s.get(ctx, url)
		if err != nil {
			return retry.RetryableError(err)
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch search page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	return extractCards(doc), nil
}

// FetchDescription downloads a listing detail page and returns its
// description text.
func (s *Scraper) FetchDescription(ctx context.Context, url string) (string, error) {
	body, err := s.get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetch detail page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse detail page: %w", err)
	}
	desc := strings.TrimSpace(doc.Find(`div[data-cy="ad_description"]`).Text())
	return desc, nil
}

func (s *Scraper) get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-GB,en-US;q=0.9,en;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// extractCards walks the search-result card containers and pulls out the
// raw fields. Cards without today's time marker are skipped.
func extractCards(doc *goquery.Document) []model.RawCard {
	var cards []model.RawCard
	doc.Find(`div[data-testid="l-card"]`).Each(func(_ int, sel *goquery.Selection) {
		locationDate := strings.TrimSpace(sel.Find(`p[data-testid="location-date"]`).Text())
		if !strings.Contains(locationDate, todayMarker) {
			return
		}
		location, listedTime, _ := strings.Cut(locationDate, todayMarker)

		titleSel := sel.Find(`div[data-cy="ad-card-title"]`)
		href, ok := titleSel.Find("a").Attr("href")
		if !ok {
			return
		}

		card := model.RawCard{
			Title:      strings.TrimSpace(titleSel.Text()),
			Price:      strings.TrimSpace(sel.Find(`p[data-testid="ad-price"]`).Text()),
			Location:   location,
			ListedTime: strings.TrimSpace(listedTime),
			DetailURL:  href,
		}
		if src, ok := sel.Find("img").Attr("src"); ok {
			card.ImageURL = src
		}
		cards = append(cards, card)
	})
	return cards
}
