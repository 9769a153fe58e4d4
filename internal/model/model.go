// Package model defines the domain types used across the application.
package model

import "time"

// Subscription represents a registered watch on a marketplace search URL.
type Subscription struct {
	ID              int64
	ChatID          int64
	Name            string
	SourceURL       string
	CreatedAt       time.Time
	LastCheckedAt   *time.Time
	LastDeliveredAt *time.Time
}

// ListingSource identifies the platform a listing's detail URL points at.
type ListingSource string

// Known listing platforms.
const (
	SourceOLX    ListingSource = "olx"
	SourceOtodom ListingSource = "otodom"
)

// Label returns the display name used in "View on X" links.
func (s ListingSource) Label() string {
	if s == SourceOtodom {
		return "Otodom"
	}
	return "OLX"
}

// Listing is one normalized marketplace item discovered under a source URL.
// DetailURL is globally unique and acts as the dedup key.
type Listing struct {
	ID              int64
	DetailURL       string
	SourceURL       string
	Source          ListingSource
	Title           string
	Price           string
	Location        string
	PostedAt        time.Time
	PostedAtDisplay string
	ImageURL        string
	Description     string
	FirstSeenAt     time.Time
}

// RawCard holds the unprocessed fields scraped from one search-result card.
type RawCard struct {
	Title       string
	Price       string
	Location    string
	ListedTime  string // page-relative time of day, "HH:MM"
	DetailURL   string // absolute or site-relative
	ImageURL    string
	Description string
}

// PetPolicy is the tri-state pet rule derived from a listing description.
type PetPolicy string

// Pet policy values.
const (
	PetsAllowed     PetPolicy = "allowed"
	PetsNotAllowed  PetPolicy = "not_allowed"
	PetsUnspecified PetPolicy = "unspecified"
)

// Facts is the structured table derived from a listing's free-text
// description. Zero amounts mean the line was absent or unparsable.
type Facts struct {
	PriceAmount        int
	DepositAmount      int
	ExtraMonthlyCharge int
	Pets               PetPolicy
}
