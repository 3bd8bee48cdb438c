// Package cache holds the materialized catalog snapshot behind a versioned,
// expiring key. A miss is a signal to rebuild, never an error condition;
// reads never trigger writes.
package cache

import (
	"context"
	"errors"
	"time"

	domain "github.com/gadgetph/phone-catalog/pkg/types"
)

// ErrMiss signals that no snapshot exists for the requested version. Callers
// treat it as "rebuild needed".
var ErrMiss = errors.New("cache miss")

// Store is the catalog snapshot store. Snapshots are immutable once
// published; AppendBatch is only ever called by the single rebuild driver,
// in increasing offset order.
type Store interface {
	// Get returns the snapshot for version, or ErrMiss.
	Get(ctx context.Context, version string) (*domain.Snapshot, error)
	// ReplaceAll overwrites the snapshot for version.
	ReplaceAll(ctx context.Context, version string, snap *domain.Snapshot, ttl time.Duration) error
	// AppendBatch merges batch into the stored snapshot in call order and
	// returns the merged result. A missing destination starts from empty.
	AppendBatch(ctx context.Context, version string, batch []domain.PhoneRecord, ttl time.Duration) (*domain.Snapshot, error)
	// Invalidate drops the snapshot for version so the next Get misses.
	Invalidate(ctx context.Context, version string) error
	Close() error
}
