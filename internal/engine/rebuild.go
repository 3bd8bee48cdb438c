// Package engine implements the catalog rebuild loops: batch ingestion from
// the product store, mapping, snapshot assembly, and scheduled refresh.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/gadgetph/phone-catalog/internal/cache"
	"github.com/gadgetph/phone-catalog/internal/catalog"
	"github.com/gadgetph/phone-catalog/internal/metrics"
	"github.com/gadgetph/phone-catalog/internal/notify"
	"github.com/gadgetph/phone-catalog/internal/query"
	domain "github.com/gadgetph/phone-catalog/pkg/types"
)

const defaultBatchSize = 100

// Rebuilder drives the batched catalog rebuild. One batch per call keeps
// each step well under request timeouts; the caller (HTTP driver or
// scheduler) loops until done.
type Rebuilder struct {
	source   catalog.Source
	mapper   *catalog.Mapper
	store    cache.Store
	notifier notify.Notifier
	log      *slog.Logger

	version   string
	batchSize int
	fullTTL   time.Duration
	batchTTL  time.Duration
	limiter   *rate.Limiter
}

// NewRebuilder creates a Rebuilder with injected dependencies.
func NewRebuilder(
	source catalog.Source,
	mapper *catalog.Mapper,
	store cache.Store,
	version string,
	opts ...RebuilderOption,
) *Rebuilder {
	r := &Rebuilder{
		source:    source,
		mapper:    mapper,
		store:     store,
		notifier:  nil,
		log:       slog.Default(),
		version:   version,
		batchSize: defaultBatchSize,
		fullTTL:   2 * time.Hour,
		batchTTL:  12 * time.Hour,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RebuilderOption configures the Rebuilder.
type RebuilderOption func(*Rebuilder)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) RebuilderOption {
	return func(r *Rebuilder) {
		r.log = l
	}
}

// WithBatchSize sets how many raw products each batch pulls.
func WithBatchSize(n int) RebuilderOption {
	return func(r *Rebuilder) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithTTLs sets the snapshot lifetimes: fullTTL for completed snapshots,
// batchTTL for snapshots still under construction.
func WithTTLs(fullTTL, batchTTL time.Duration) RebuilderOption {
	return func(r *Rebuilder) {
		r.fullTTL = fullTTL
		r.batchTTL = batchTTL
	}
}

// WithRateLimiter bounds how fast batches hit the product store.
func WithRateLimiter(l *rate.Limiter) RebuilderOption {
	return func(r *Rebuilder) {
		r.limiter = l
	}
}

// WithNotifier announces completed rebuilds.
func WithNotifier(n notify.Notifier) RebuilderOption {
	return func(r *Rebuilder) {
		r.notifier = n
	}
}

// RunBatch processes one rebuild step at the given offset. Offset 0 starts a
// fresh rebuild: it counts the source and replaces the snapshot with an
// empty one carrying the total, so progress survives between steps. Progress
// percentage and the done flag follow the operator tooling contract exactly.
func (r *Rebuilder) RunBatch(ctx context.Context, offset int) (*domain.RebuildProgress, error) {
	ctx, span := otel.Tracer("engine").Start(ctx, "Rebuilder.RunBatch",
		trace.WithAttributes(
			attribute.Int("rebuild.offset", offset),
			attribute.String("rebuild.version", r.version),
		),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.RebuildDuration.Observe(time.Since(start).Seconds())
	}()
	metrics.RebuildBatchesTotal.Inc()

	if offset < 0 {
		offset = 0
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if offset == 0 {
		total, err := r.source.Count(ctx)
		if err != nil {
			metrics.RebuildErrorsTotal.Inc()
			return nil, fmt.Errorf("counting products: %w", err)
		}
		seed := &domain.Snapshot{Total: total, UpdatedAt: time.Now().UTC()}
		if err := r.store.ReplaceAll(ctx, r.version, seed, r.batchTTL); err != nil {
			metrics.RebuildErrorsTotal.Inc()
			return nil, fmt.Errorf("seeding snapshot: %w", err)
		}
		if total == 0 {
			r.log.Warn("product store is empty, rebuild is a no-op")
			return &domain.RebuildProgress{Percentage: 100, Done: true}, nil
		}
	}

	raws, err := r.source.List(ctx, offset, r.batchSize)
	if err != nil {
		metrics.RebuildErrorsTotal.Inc()
		return nil, fmt.Errorf("listing products at offset %d: %w", offset, err)
	}

	records := make([]domain.PhoneRecord, 0, len(raws))
	skipped := 0
	for i := range raws {
		rec := r.mapper.Map(&raws[i])
		if rec == nil {
			skipped++
			continue
		}
		records = append(records, *rec)
	}
	if skipped > 0 {
		metrics.RebuildSkippedTotal.Add(float64(skipped))
	}

	merged, err := r.store.AppendBatch(ctx, r.version, records, r.batchTTL)
	if err != nil {
		metrics.RebuildErrorsTotal.Inc()
		return nil, fmt.Errorf("appending batch at offset %d: %w", offset, err)
	}

	total := merged.Total
	processed := offset + r.batchSize
	if processed > total {
		processed = total
	}

	progress := &domain.RebuildProgress{
		Processed: processed,
		Total:     total,
		Done:      processed >= total,
		Skipped:   skipped,
	}
	if total > 0 {
		progress.Percentage = int(math.Round(float64(processed) / float64(total) * 100))
	} else {
		progress.Percentage = 100
	}

	r.log.Info("rebuild batch complete",
		"offset", offset,
		"batch_records", len(records),
		"batch_skipped", skipped,
		"processed", processed,
		"total", total,
		"done", progress.Done,
	)

	if progress.Done {
		if err := r.finalize(ctx, merged, start); err != nil {
			metrics.RebuildErrorsTotal.Inc()
			return nil, err
		}
	}

	return progress, nil
}

// finalize republishes the completed snapshot with the precomputed drop
// leaderboard and the full-snapshot TTL, then announces it.
func (r *Rebuilder) finalize(ctx context.Context, snap *domain.Snapshot, started time.Time) error {
	snap.Drops = query.PriceDrops(snap.Records, "", 0)
	snap.UpdatedAt = time.Now().UTC()

	if err := r.store.ReplaceAll(ctx, r.version, snap, r.fullTTL); err != nil {
		return fmt.Errorf("publishing completed snapshot: %w", err)
	}

	metrics.CatalogSize.Set(float64(len(snap.Records)))
	r.log.Info("catalog rebuild finished",
		"version", r.version,
		"records", len(snap.Records),
		"drops", len(snap.Drops),
	)

	if r.notifier != nil {
		payload := &notify.RebuildPayload{
			Version:  r.version,
			Records:  len(snap.Records),
			Skipped:  snap.Total - len(snap.Records),
			Duration: time.Since(started),
			TopDrops: snap.Drops,
		}
		if err := r.notifier.SendRebuildComplete(ctx, payload); err != nil {
			// Notification failure never fails the rebuild.
			r.log.Error("rebuild notification failed", "error", err)
		}
	}

	return nil
}

// RunAll drives a complete rebuild in one call, looping batches from offset
// 0 until done. Used by the scheduler and the CLI.
func (r *Rebuilder) RunAll(ctx context.Context) (*domain.RebuildProgress, error) {
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		progress, err := r.RunBatch(ctx, offset)
		if err != nil {
			return nil, err
		}
		if progress.Done {
			return progress, nil
		}
		offset += r.batchSize
	}
}
