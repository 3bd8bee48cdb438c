// Package catalog turns raw product-store rows into normalized PhoneRecords.
package catalog

import "context"

// Term is one taxonomy term attached to a product, in source order.
type Term struct {
	Slug string
	Name string
}

// Attribute is one free-text product attribute, e.g.
// ("internal-memory", "256GB 12GB RAM").
type Attribute struct {
	Name  string
	Value string
}

// RawProduct is a product exactly as the upstream store hands it over. Money
// fields stay strings here; coercion is the mapper's job.
type RawProduct struct {
	ID           string
	Title        string
	Type         string // simple, external, ...
	Price        string
	RegularPrice string

	// ExternalURL is the affiliate link accessor. It is unreliable for some
	// product types, which is why ProductURLMeta exists as a raw fallback.
	ExternalURL    string
	ProductURLMeta string
	Permalink      string
	ImageURL       string

	Terms      []Term
	Tags       []string
	Attributes []Attribute
}

// Source is the ingestion boundary to the upstream product store. A row-level
// miss (deleted product, dangling term) never surfaces as an error; the row is
// simply absent from List results.
type Source interface {
	// Count returns the number of catalog products, used to size a batched
	// rebuild.
	Count(ctx context.Context) (int, error)
	// List returns products in stable source order. Offset past the end
	// returns an empty slice, not an error.
	List(ctx context.Context, offset, limit int) ([]RawProduct, error)
	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
