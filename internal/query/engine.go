// Package query filters, sorts, and windows catalog snapshots. Everything
// here is pure computation over an in-memory record slice; snapshots are
// small enough that a full pass per request beats maintaining indexes.
package query

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/gadgetph/phone-catalog/internal/metrics"
	domain "github.com/gadgetph/phone-catalog/pkg/types"
)

// Window growth constants. The list starts collapsed and grows in fixed
// steps; the client round-trips the current window size, so the server stays
// stateless.
const (
	initialWindow = 10
	windowStep    = 10
)

// Action is a windowing gesture from the client.
type Action string

// Windowing actions. Anything unrecognized behaves like ActionReset.
const (
	ActionReset Action = "reset"
	ActionMore  Action = "more"
	ActionAll   Action = "all"
)

// Session is the per-request windowing state. It lives entirely in the
// request/response cycle; nothing is stored server-side.
type Session struct {
	Query  domain.Query `json:"query"`
	Window int          `json:"window"`
}

// View is one rendered page of the catalog list.
type View struct {
	Visible       []domain.PhoneRecord `json:"visible"`
	TotalFiltered int                  `json:"totalFiltered"`
	Window        int                  `json:"window"`
	HasMore       bool                 `json:"hasMore"`
}

// Engine applies queries to snapshots. Safe for concurrent use; the collator
// is guarded because x/text collators are not.
type Engine struct {
	mu       sync.Mutex
	collator *collate.Collator
}

// NewEngine creates an Engine with an English-locale collator, matching how
// the storefront compares product names.
func NewEngine() *Engine {
	return &Engine{
		collator: collate.New(language.English, collate.IgnoreCase),
	}
}

func (e *Engine) compareStrings(a, b string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.collator.CompareString(a, b)
}

// Apply runs the full pipeline: filter, sort, then window. The returned
// Session carries the effective window so the client can round-trip it. Any
// change to the query collapses the window back to the initial size, whatever
// action the client sent; the previous query rides along in the Session so
// the engine can detect the change itself.
func (e *Engine) Apply(
	records []domain.PhoneRecord,
	q domain.Query,
	sess Session,
	action Action,
) (View, Session) {
	metrics.QueriesTotal.Inc()

	if q != sess.Query {
		action = ActionReset
	}

	filtered := Filter(records, q)
	e.Sort(filtered, q)

	if len(filtered) == 0 {
		metrics.QueryNoResultsTotal.Inc()
	}

	window := nextWindow(sess.Window, action, len(filtered))

	view := View{
		Visible:       filtered[:window],
		TotalFiltered: len(filtered),
		Window:        window,
		HasMore:       window < len(filtered),
	}
	return view, Session{Query: q, Window: window}
}

// nextWindow computes the effective window. The result is always clamped to
// the filtered total so HasMore stays truthful.
func nextWindow(current int, action Action, total int) int {
	var w int
	switch action {
	case ActionMore:
		if current <= 0 {
			current = initialWindow
		}
		w = current + windowStep
	case ActionAll:
		w = total
	default:
		w = initialWindow
	}
	if w > total {
		w = total
	}
	return w
}

// Filter returns the records matching every active criterion. Criteria
// compose with AND; an empty or sentinel criterion matches everything. The
// input is never mutated.
func Filter(records []domain.PhoneRecord, q domain.Query) []domain.PhoneRecord {
	needle := normalizeSearch(q.SearchText)

	out := make([]domain.PhoneRecord, 0, len(records))
	for i := range records {
		r := &records[i]
		if q.Brand != "" && q.Brand != domain.BrandAll && r.Brand != q.Brand {
			continue
		}
		if !q.Bucket.Contains(r.Price) {
			continue
		}
		if needle != "" && !strings.Contains(normalizeSearch(r.SearchPool()), needle) {
			continue
		}
		out = append(out, *r)
	}
	return out
}

// normalizeSearch lowercases and strips all whitespace, so "5000 mAh" and
// "5000mah" match each other.
func normalizeSearch(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// Sort orders records in place by the query's sort key and direction. An
// unknown key leaves the slice untouched rather than guessing; the sort is
// stable so equal keys keep their snapshot order.
func (e *Engine) Sort(records []domain.PhoneRecord, q domain.Query) {
	cmp := e.comparator(q.SortKey)
	if cmp == nil {
		return
	}

	sort.SliceStable(records, func(i, j int) bool {
		c := cmp(&records[i], &records[j])
		if q.SortDir == domain.SortDesc {
			return c > 0
		}
		return c < 0
	})
}

func (e *Engine) comparator(key string) func(a, b *domain.PhoneRecord) int {
	switch key {
	case "price":
		return func(a, b *domain.PhoneRecord) int {
			switch {
			case a.Price < b.Price:
				return -1
			case a.Price > b.Price:
				return 1
			default:
				return 0
			}
		}
	case "name":
		return func(a, b *domain.PhoneRecord) int {
			return e.compareStrings(a.Name, b.Name)
		}
	case "brand":
		return func(a, b *domain.PhoneRecord) int {
			return e.compareStrings(a.Brand, b.Brand)
		}
	default:
		return nil
	}
}
