package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"listing_bot/internal/model"
	"listing_bot/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=OFF"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("disable foreign keys: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateSubscription inserts a new subscription and populates its ID and
// CreatedAt. The unique constraints on (chat_id, name) and
// (chat_id, source_url) are enforced here as the final authority.
func (s *SQLite) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO subscriptions (chat_id, name, source_url, created_at)
		 VALUES (?, ?, ?, ?)`,
		sub.ChatID, sub.Name, sub.SourceURL, now,
	)
	if err != nil {
		if constraintErr := mapConstraint(err); constraintErr != nil {
			return constraintErr
		}
		return fmt.Errorf("insert subscription: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	sub.ID = id
	sub.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// GetSubscription returns the subscription with the given name for a chat.
func (s *SQLite) GetSubscription(ctx context.Context, chatID int64, name string) (*model.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, chat_id, name, source_url, created_at, last_checked_at, last_delivered_at
		 FROM subscriptions WHERE chat_id = ? AND name = ?`, chatID, name,
	)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sub, err
}

// ListSubscriptions returns all subscriptions belonging to the given chat.
func (s *SQLite) ListSubscriptions(ctx context.Context, chatID int64) ([]model.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, name, source_url, created_at, last_checked_at, last_delivered_at
		 FROM subscriptions WHERE chat_id = ? ORDER BY id`, chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanSubscriptions(rows)
}

// DeleteSubscription removes the named subscription for a chat.
func (s *SQLite) DeleteSubscription(ctx context.Context, chatID int64, name string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE chat_id = ? AND name = ?`, chatID, name,
	)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DueSubscriptions returns subscriptions admitted for a delivery check:
// never delivered to, or last delivered before now minus minInterval.
// last_checked_at does not participate in the gate.
func (s *SQLite) DueSubscriptions(ctx context.Context, now time.Time, minInterval time.Duration) ([]model.Subscription, error) {
	threshold := now.Add(-minInterval).UTC().Format(timeLayout)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, name, source_url, created_at, last_checked_at, last_delivered_at
		 FROM subscriptions
		 WHERE last_delivered_at IS NULL OR last_delivered_at < ?
		 ORDER BY id`, threshold,
	)
	if err != nil {
		return nil, fmt.Errorf("query due subscriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanSubscriptions(rows)
}

// SaveListing inserts a listing. Re-ingesting an already known detail URL
// leaves the table unchanged.
func (s *SQLite) SaveListing(ctx context.Context, l *model.Listing) error {
	firstSeen := l.FirstSeenAt
	if firstSeen.IsZero() {
		firstSeen = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO listings
		 (detail_url, source_url, source, title, price, location, posted_at, posted_at_display, image_url, description, first_seen_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.DetailURL, l.SourceURL, string(l.Source), l.Title, l.Price, l.Location,
		l.PostedAt.UTC().Format(timeLayout), l.PostedAtDisplay, l.ImageURL, l.Description,
		firstSeen.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		if id, err := res.LastInsertId(); err == nil {
			l.ID = id
		}
		l.FirstSeenAt = firstSeen
	}
	return nil
}

// ListingsSince returns listings under sourceURL first seen strictly after
// the watermark, oldest first.
func (s *SQLite) ListingsSince(ctx context.Context, sourceURL string, watermark time.Time) ([]model.Listing, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, detail_url, source_url, source, title, price, location, posted_at, posted_at_display, image_url, description, first_seen_at
		 FROM listings
		 WHERE source_url = ? AND first_seen_at > ?
		 ORDER BY first_seen_at, id`,
		sourceURL, watermark.UTC().Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var listings []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// SourceURLs returns the distinct source URLs across all subscriptions.
func (s *SQLite) SourceURLs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT source_url FROM subscriptions ORDER BY source_url`,
	)
	if err != nil {
		return nil, fmt.Errorf("query source urls: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan source url: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// DeleteListingsOlderThan purges listings first seen before cutoff and
// returns the number of rows removed.
func (s *SQLite) DeleteListingsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM listings WHERE first_seen_at < ?`,
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("delete old listings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// AdvanceWatermark records the outcome of a delivery cycle. last_checked_at
// is always set to checkedAt; last_delivered_at moves only when deliveredAt
// is supplied, i.e. after a fully successful non-empty delivery.
func (s *SQLite) AdvanceWatermark(ctx context.Context, subscriptionID int64, checkedAt time.Time, deliveredAt *time.Time) error {
	checked := checkedAt.UTC().Format(timeLayout)
	var err error
	if deliveredAt != nil {
		delivered := deliveredAt.UTC().Format(timeLayout)
		_, err = s.db.ExecContext(ctx,
			`UPDATE subscriptions SET last_checked_at = ?, last_delivered_at = ? WHERE id = ?`,
			checked, delivered, subscriptionID,
		)
	} else {
		_, err = s.db.ExecContext(ctx,
			`UPDATE subscriptions SET last_checked_at = ? WHERE id = ?`,
			checked, subscriptionID,
		)
	}
	if err != nil {
		return fmt.Errorf("advance watermark: %w", err)
	}
	return nil
}

// mapConstraint translates sqlite unique-constraint violations into the
// storage sentinel errors. Returns nil for anything else.
func mapConstraint(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	switch {
	case strings.Contains(msg, "subscriptions.name"):
		return ErrDuplicateName
	case strings.Contains(msg, "subscriptions.source_url"):
		return ErrDuplicateURL
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSubscription(row scannable) (*model.Subscription, error) {
	var sub model.Subscription
	var created sql.NullString
	var checked, delivered sql.NullString
	err := row.Scan(&sub.ID, &sub.ChatID, &sub.Name, &sub.SourceURL, &created, &checked, &delivered)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan subscription: %w", err)
	}
	if created.Valid {
		sub.CreatedAt, _ = time.Parse(timeLayout, created.String)
	}
	if checked.Valid {
		t, _ := time.Parse(timeLayout, checked.String)
		sub.LastCheckedAt = &t
	}
	if delivered.Valid {
		t, _ := time.Parse(timeLayout, delivered.String)
		sub.LastDeliveredAt = &t
	}
	return &sub, nil
}

func scanSubscriptions(rows *sql.Rows) ([]model.Subscription, error) {
	var subs []model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func scanListing(row scannable) (model.Listing, error) {
	var l model.Listing
	var source string
	var posted, firstSeen sql.NullString
	var imageURL, description sql.NullString
	err := row.Scan(&l.ID, &l.DetailURL, &l.SourceURL, &source, &l.Title, &l.Price,
		&l.Location, &posted, &l.PostedAtDisplay, &imageURL, &description, &firstSeen)
	if err != nil {
		return l, fmt.Errorf("scan listing: %w", err)
	}
	l.Source = model.ListingSource(source)
	if posted.Valid {
		l.PostedAt, _ = time.Parse(timeLayout, posted.String)
	}
	if firstSeen.Valid {
		l.FirstSeenAt, _ = time.Parse(timeLayout, firstSeen.String)
	}
	l.ImageURL = imageURL.String
	l.Description = description.String
	return l, nil
}
