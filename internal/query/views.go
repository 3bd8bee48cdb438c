package query

import (
	"sort"

	"github.com/gadgetph/phone-catalog/internal/metrics"
	domain "github.com/gadgetph/phone-catalog/pkg/types"
)

const (
	segmentLeaderCount = 3
	popularPickCount   = 5
)

// Segment is the best-value shortlist for one price bucket.
type Segment struct {
	Bucket domain.PriceBucket   `json:"bucket"`
	Phones []domain.PhoneRecord `json:"phones"`
}

// SegmentLeaders computes the per-bucket shortlists: the three cheapest
// phones in each bucket, except flagship which shows the three most
// expensive. Every bucket appears in the result even when empty so the
// storefront layout stays stable.
func SegmentLeaders(records []domain.PhoneRecord) []Segment {
	metrics.ViewComputationsTotal.WithLabelValues("segments").Inc()

	segments := make([]Segment, 0, len(domain.SegmentBuckets))
	for _, bucket := range domain.SegmentBuckets {
		var in []domain.PhoneRecord
		for i := range records {
			if bucket.Contains(records[i].Price) {
				in = append(in, records[i])
			}
		}

		desc := bucket == domain.BucketFlagship
		sort.SliceStable(in, func(i, j int) bool {
			if desc {
				return in[i].Price > in[j].Price
			}
			return in[i].Price < in[j].Price
		})

		if len(in) > segmentLeaderCount {
			in = in[:segmentLeaderCount]
		}
		segments = append(segments, Segment{Bucket: bucket, Phones: in})
	}
	return segments
}

// PopularPicks returns the first editor-tagged phones in snapshot order,
// capped at five. Snapshot order is the store's own ordering, which the
// editors curate; it must not be re-sorted here.
func PopularPicks(records []domain.PhoneRecord) []domain.PhoneRecord {
	metrics.ViewComputationsTotal.WithLabelValues("picks").Inc()

	var picks []domain.PhoneRecord
	for i := range records {
		if !records[i].IsPopular {
			continue
		}
		picks = append(picks, records[i])
		if len(picks) == popularPickCount {
			break
		}
	}
	return picks
}

// PriceDrops builds the discount leaderboard: every record with an active
// discount, ordered by absolute savings descending. brand filters to one
// brand when it isn't the sentinel; limit truncates the result, 0 meaning no
// truncation.
func PriceDrops(records []domain.PhoneRecord, brand string, limit int) []domain.PriceDrop {
	metrics.ViewComputationsTotal.WithLabelValues("drops").Inc()

	var drops []domain.PriceDrop
	for i := range records {
		r := &records[i]
		if !r.HasDiscount() {
			continue
		}
		if brand != "" && brand != domain.BrandAll && r.Brand != brand {
			continue
		}
		drops = append(drops, domain.PriceDrop{
			PhoneRecord: *r,
			Savings:     r.Savings(),
			Percent:     r.SavingsPercent(),
		})
	}

	sort.SliceStable(drops, func(i, j int) bool {
		return drops[i].Savings > drops[j].Savings
	})

	if limit > 0 && len(drops) > limit {
		drops = drops[:limit]
	}
	return drops
}

// FilterDrops applies a brand filter and limit to a precomputed leaderboard,
// preserving its order. Snapshots carry the full leaderboard; this narrows it
// per request without recomputing savings.
func FilterDrops(drops []domain.PriceDrop, brand string, limit int) []domain.PriceDrop {
	out := make([]domain.PriceDrop, 0, len(drops))
	for i := range drops {
		if brand != "" && brand != domain.BrandAll && drops[i].Brand != brand {
			continue
		}
		out = append(out, drops[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
