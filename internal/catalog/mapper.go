package catalog

import (
	"regexp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	domain "github.com/gadgetph/phone-catalog/pkg/types"
)

// extractionRule binds an attribute slug to a regex and a target spec field.
// New spec fields are added here, not in code. A nil pattern passes the raw
// attribute value through; rawFallback keeps the raw value when the pattern
// misses instead of leaving the sentinel.
type extractionRule struct {
	attribute   string
	pattern     *regexp.Regexp
	target      func(*domain.PhoneRecord) *string
	rawFallback bool
}

// The combined internal-memory attribute looks like "256GB 12GB RAM": the
// first GB number is storage, the RAM-suffixed one is RAM. Two rules on the
// same attribute keep that apart even when the numbers coincide.
var extractionRules = []extractionRule{
	{
		attribute: "internal-memory",
		pattern:   regexp.MustCompile(`(?i)(\d+\s*GB)\s*RAM`),
		target:    func(r *domain.PhoneRecord) *string { return &r.RAM },
	},
	{
		attribute: "internal-memory",
		pattern:   regexp.MustCompile(`(?i)(\d+\s*GB)`),
		target:    func(r *domain.PhoneRecord) *string { return &r.Storage },
	},
	{
		attribute: "main-camera",
		pattern:   regexp.MustCompile(`(?i)(\d+\s*MP)`),
		target:    func(r *domain.PhoneRecord) *string { return &r.Camera },
	},
	{
		attribute: "display-size",
		pattern:   regexp.MustCompile(`(?i)([\d.]+\s*inches)`),
		target:    func(r *domain.PhoneRecord) *string { return &r.Display },
	},
	{
		attribute: "chipset",
		target:    func(r *domain.PhoneRecord) *string { return &r.Processor },
	},
	{
		attribute:   "battery-type",
		pattern:     regexp.MustCompile(`(?i)(\d+\s*mAh)`),
		target:      func(r *domain.PhoneRecord) *string { return &r.Battery },
		rawFallback: true,
	},
}

// MapperConfig configures brand resolution and product filtering.
type MapperConfig struct {
	// RootSlug is the catalog root category; it is skipped when resolving
	// the brand from taxonomy terms.
	RootSlug string
	// PopularTag marks editor's picks.
	PopularTag string
	// ExcludedTitleWords drops non-phone products sharing the category.
	ExcludedTitleWords []string
}

func (c *MapperConfig) applyDefaults() {
	if c.RootSlug == "" {
		c.RootSlug = "mobile-phones"
	}
	if c.PopularTag == "" {
		c.PopularTag = "editor-pick"
	}
	if c.ExcludedTitleWords == nil {
		c.ExcludedTitleWords = []string{"watch"}
	}
}

// Mapper transforms raw products into normalized PhoneRecords. It is a pure
// function over its input; no I/O.
type Mapper struct {
	cfg MapperConfig
}

// NewMapper creates a Mapper, filling config defaults.
func NewMapper(cfg MapperConfig) *Mapper {
	cfg.applyDefaults()
	return &Mapper{cfg: cfg}
}

// Map normalizes one raw product. It returns nil when the product is not a
// sellable phone: missing or non-positive price, or an excluded title.
// Callers filter nil out and count it for observability.
func (m *Mapper) Map(p *RawProduct) *domain.PhoneRecord {
	if p == nil {
		return nil
	}
	if m.titleExcluded(p.Title) {
		return nil
	}

	price := parsePrice(p.Price)
	if price <= 0 {
		return nil
	}

	rec := &domain.PhoneRecord{
		ID:           p.ID,
		Brand:        m.resolveBrand(p.Terms),
		Name:         p.Title,
		Price:        price,
		RegularPrice: parsePrice(p.RegularPrice),
		RAM:          domain.NotAvailable,
		Storage:      domain.NotAvailable,
		Camera:       domain.NotAvailable,
		Display:      domain.NotAvailable,
		Processor:    domain.NotAvailable,
		Battery:      domain.NotAvailable,
		IsPopular:    slices.Contains(p.Tags, m.cfg.PopularTag),
		ProductURL:   p.Permalink,
		DealURL:      resolveDealURL(p),
		ImageURL:     p.ImageURL,
	}

	applyExtractionRules(rec, p.Attributes)

	return rec
}

// resolveBrand picks the first taxonomy term that isn't the catalog root.
// First match wins: once the root slug has been skipped, deeper or more
// specific terms are never considered. Known limitation, kept deliberately.
func (m *Mapper) resolveBrand(terms []Term) string {
	for _, t := range terms {
		if t.Slug == m.cfg.RootSlug {
			continue
		}
		if t.Name != "" {
			return t.Name
		}
	}
	return domain.BrandUncategorized
}

func (m *Mapper) titleExcluded(title string) bool {
	lower := strings.ToLower(title)
	for _, w := range m.cfg.ExcludedTitleWords {
		if w != "" && strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// resolveDealURL prefers the affiliate URL, then the raw stored meta value,
// then the product page. The middle tier exists because the affiliate
// accessor is unreliable for external product types; the order must not
// change.
func resolveDealURL(p *RawProduct) string {
	if p.ExternalURL != "" {
		return p.ExternalURL
	}
	if p.ProductURLMeta != "" {
		return p.ProductURLMeta
	}
	return p.Permalink
}

func applyExtractionRules(rec *domain.PhoneRecord, attrs []Attribute) {
	for _, a := range attrs {
		name := normalizeAttributeName(a.Name)
		for i := range extractionRules {
			rule := &extractionRules[i]
			if rule.attribute != name {
				continue
			}
			if v, ok := rule.extract(a.Value); ok {
				*rule.target(rec) = v
			}
		}
	}
}

func (r *extractionRule) extract(value string) (string, bool) {
	if strings.TrimSpace(value) == "" {
		return "", false
	}
	if r.pattern == nil {
		return strings.TrimSpace(value), true
	}
	if m := r.pattern.FindStringSubmatch(value); len(m) > 1 {
		return m[1], true
	}
	if r.rawFallback {
		return strings.TrimSpace(value), true
	}
	return "", false
}

// normalizeAttributeName strips the store's attribute taxonomy prefix
// ("pa_internal-memory" -> "internal-memory").
func normalizeAttributeName(name string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "pa_")
}

// parsePrice coerces a raw money string to a non-negative float. Thousands
// separators and a currency sign are tolerated; anything unparseable is 0.
func parsePrice(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "₱")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	if f < 0 {
		return 0
	}
	return f
}
