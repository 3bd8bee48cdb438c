package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/gadgetph/phone-catalog/internal/metrics"
	domain "github.com/gadgetph/phone-catalog/pkg/types"
)

const keyPrefix = "catalog/"

// BadgerStore implements Store on an embedded badger database. Badger gives
// us TTL-expiring values that survive process restarts, which is exactly the
// lifetime model the catalog snapshot needs.
type BadgerStore struct {
	db  *badger.DB
	log *slog.Logger
}

// Open creates a BadgerStore at path. An empty path opens an in-memory
// database (used in tests and as a fallback when no cache dir is configured).
func Open(path string, log *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	// Badger's own logger is chatty at INFO; we log at the store level.
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	return &BadgerStore{db: db, log: log}, nil
}

// Close shuts down the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Get returns the snapshot for version, or ErrMiss if absent or expired.
func (s *BadgerStore) Get(ctx context.Context, version string) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var snap *domain.Snapshot
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(version))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			snap = &domain.Snapshot{}
			return json.Unmarshal(val, snap)
		})
	})

	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		metrics.CacheMissesTotal.Inc()
		return nil, ErrMiss
	case err != nil:
		return nil, fmt.Errorf("reading snapshot %q: %w", version, err)
	}

	metrics.CacheHitsTotal.Inc()
	return snap, nil
}

// ReplaceAll overwrites the snapshot for version with the given TTL.
func (s *BadgerStore) ReplaceAll(
	ctx context.Context,
	version string,
	snap *domain.Snapshot,
	ttl time.Duration,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return writeSnapshot(txn, version, snap, ttl)
	})
	if err != nil {
		return fmt.Errorf("writing snapshot %q: %w", version, err)
	}

	s.log.Debug("snapshot replaced",
		"version", version,
		"records", len(snap.Records),
		"ttl", ttl,
	)
	return nil
}

// AppendBatch merges batch into the stored snapshot for version, preserving
// input order, and refreshes the TTL. The read-merge-write happens in a
// single transaction; the rebuild driver is the only writer, so batches
// issued in increasing offset order land without duplication.
func (s *BadgerStore) AppendBatch(
	ctx context.Context,
	version string,
	batch []domain.PhoneRecord,
	ttl time.Duration,
) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var merged *domain.Snapshot
	err := s.db.Update(func(txn *badger.Txn) error {
		snap := &domain.Snapshot{}

		item, err := txn.Get(snapshotKey(version))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// Offset 0 seeds an empty snapshot first, so this only
			// happens when a rebuild resumes after expiry. Starting
			// from empty keeps the result internally consistent.
			s.log.Warn("append into missing snapshot, starting empty", "version", version)
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, snap)
			}); err != nil {
				return err
			}
		}

		snap.Records = append(snap.Records, batch...)
		snap.UpdatedAt = time.Now().UTC()
		merged = snap

		return writeSnapshot(txn, version, snap, ttl)
	})
	if err != nil {
		return nil, fmt.Errorf("appending batch to snapshot %q: %w", version, err)
	}

	return merged, nil
}

// Invalidate drops the snapshot for version. Deleting an absent key is a
// no-op, so repeated invalidations are harmless.
func (s *BadgerStore) Invalidate(ctx context.Context, version string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(snapshotKey(version))
	})
	if err != nil {
		return fmt.Errorf("invalidating snapshot %q: %w", version, err)
	}

	metrics.CacheInvalidationsTotal.Inc()
	s.log.Info("snapshot invalidated", "version", version)
	return nil
}

func writeSnapshot(txn *badger.Txn, version string, snap *domain.Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	entry := badger.NewEntry(snapshotKey(version), data)
	if ttl > 0 {
		entry = entry.WithTTL(ttl)
	}
	return txn.SetEntry(entry)
}

func snapshotKey(version string) []byte {
	return []byte(keyPrefix + version)
}
