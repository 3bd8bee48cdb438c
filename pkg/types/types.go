// Package domain defines the core business types for the phone catalog.
package domain

import (
	"math"
	"slices"
	"strings"
	"time"
)

// NotAvailable is the canonical placeholder for a spec attribute that is
// absent or unparseable. Display logic checks `value != NotAvailable`, so it
// must never be replaced with an empty string.
const NotAvailable = "N/A"

// BrandUncategorized is the fallback brand when no category term resolves.
const BrandUncategorized = "Uncategorized"

// PriceBucket is one of the fixed price ranges used for coarse filtering and
// segment aggregation. Prices are in PHP.
type PriceBucket string

// Price bucket constants. Upper bounds are inclusive except for the unbounded
// flagship bucket.
const (
	BucketAll      PriceBucket = "all"
	BucketBudget   PriceBucket = "budget"   // <= 10,000
	BucketMidrange PriceBucket = "midrange" // 10,001 - 25,000
	BucketPremium  PriceBucket = "premium"  // 25,001 - 50,000
	BucketFlagship PriceBucket = "flagship" // > 50,000
)

// SegmentBuckets lists the four concrete buckets in ascending price order.
var SegmentBuckets = []PriceBucket{
	BucketBudget,
	BucketMidrange,
	BucketPremium,
	BucketFlagship,
}

// Contains reports whether price falls inside the bucket.
func (b PriceBucket) Contains(price float64) bool {
	switch b {
	case BucketBudget:
		return price <= 10000
	case BucketMidrange:
		return price > 10000 && price <= 25000
	case BucketPremium:
		return price > 25000 && price <= 50000
	case BucketFlagship:
		return price > 50000
	default:
		return true
	}
}

// ParseBucket maps a query-string value to a PriceBucket, defaulting to
// BucketAll for anything unrecognized.
func ParseBucket(s string) PriceBucket {
	switch PriceBucket(s) {
	case BucketBudget, BucketMidrange, BucketPremium, BucketFlagship:
		return PriceBucket(s)
	default:
		return BucketAll
	}
}

// SortDirection controls comparator sign.
type SortDirection string

// Sort direction constants.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// BrandAll is the brand filter sentinel meaning "no brand filter".
const BrandAll = "all"

// PhoneRecord is one normalized catalog product. Records are immutable after
// creation; the JSON field names are the display data contract and must not
// change.
type PhoneRecord struct {
	ID           string  `json:"id"`
	Brand        string  `json:"brand"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	RegularPrice float64 `json:"regular_price"`

	// Spec attributes extracted from free text. Each is either a matched
	// pattern or exactly NotAvailable.
	RAM       string `json:"ram"`
	Storage   string `json:"storage"`
	Camera    string `json:"camera"`
	Display   string `json:"display"`
	Processor string `json:"processor"`
	Battery   string `json:"battery"`

	IsPopular bool `json:"isPopular"`

	ProductURL string `json:"productUrl"`
	DealURL    string `json:"dealUrl"`
	ImageURL   string `json:"imageUrl,omitempty"`
}

// HasDiscount reports whether a discount is active. A discount exists iff a
// regular price is set and strictly exceeds the sale price.
func (p *PhoneRecord) HasDiscount() bool {
	return p.RegularPrice > 0 && p.RegularPrice > p.Price
}

// Savings returns the absolute discount amount, or 0 when no discount is
// active.
func (p *PhoneRecord) Savings() float64 {
	if !p.HasDiscount() {
		return 0
	}
	return p.RegularPrice - p.Price
}

// SavingsPercent returns the discount as a rounded percentage of the regular
// price.
func (p *PhoneRecord) SavingsPercent() int {
	if !p.HasDiscount() {
		return 0
	}
	return int(math.Round(p.Savings() / p.RegularPrice * 100))
}

// Bucket returns the segment bucket the record's price falls into.
func (p *PhoneRecord) Bucket() PriceBucket {
	for _, b := range SegmentBuckets {
		if b.Contains(p.Price) {
			return b
		}
	}
	return BucketFlagship
}

// SearchPool concatenates every searchable field into one lowercase string.
// NotAvailable and empty fields are excluded so that searching "n/a" never
// matches.
func (p *PhoneRecord) SearchPool() string {
	fields := []string{
		p.Name, p.Brand, p.Processor,
		p.RAM, p.Storage, p.Battery, p.Camera, p.Display,
	}
	parts := fields[:0]
	for _, f := range fields {
		if f != "" && f != NotAvailable {
			parts = append(parts, f)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Query is one user interaction with the catalog list: constructed per
// request, immediately consumed, never persisted.
type Query struct {
	SearchText string        `json:"searchText"`
	Brand      string        `json:"brand"`
	Bucket     PriceBucket   `json:"priceBucket"`
	SortKey    string        `json:"sortKey"`
	SortDir    SortDirection `json:"sortDirection"`
}

// Snapshot is a fully materialized catalog list for one cache version.
// Drops is the precomputed price-drop leaderboard; readers must tolerate it
// being absent (older snapshot encodings) and recompute from Records.
type Snapshot struct {
	Records   []PhoneRecord `json:"records"`
	Drops     []PriceDrop   `json:"drops,omitempty"`
	Total     int           `json:"total"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Brands returns the distinct brand names present in the snapshot, sorted.
func (s *Snapshot) Brands() []string {
	seen := make(map[string]struct{}, len(s.Records))
	var brands []string
	for i := range s.Records {
		b := s.Records[i].Brand
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		brands = append(brands, b)
	}
	slices.Sort(brands)
	return brands
}

// PriceDrop is one row of the price-drop leaderboard.
type PriceDrop struct {
	PhoneRecord
	Savings float64 `json:"savings"`
	Percent int     `json:"percent"`
}

// RebuildProgress is the batch rebuild operator contract: percentage is
// round(processed/total*100) and Done flips when processed >= total. Existing
// operator tooling depends on these exact semantics.
type RebuildProgress struct {
	Processed  int  `json:"processed"`
	Total      int  `json:"total"`
	Percentage int  `json:"percentage"`
	Done       bool `json:"done"`
	Skipped    int  `json:"skipped"`
}
