package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gadgetph/phone-catalog/internal/cache"
	"github.com/gadgetph/phone-catalog/pkg/logger"
	domain "github.com/gadgetph/phone-catalog/pkg/types"
)

func openTestStore(t *testing.T) *cache.BadgerStore {
	t.Helper()
	s, err := cache.Open("", logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func rec(id, name string, price float64) domain.PhoneRecord {
	return domain.PhoneRecord{ID: id, Brand: "Samsung", Name: name, Price: price}
}

func TestBadgerStore_GetMiss(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	_, err := s.Get(context.Background(), "v5")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestBadgerStore_ReplaceAllThenGet(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	snap := &domain.Snapshot{
		Records:   []domain.PhoneRecord{rec("1", "A55", 18290)},
		Total:     1,
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.ReplaceAll(ctx, "v5", snap, time.Hour))

	got, err := s.Get(ctx, "v5")
	require.NoError(t, err)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "A55", got.Records[0].Name)
	assert.Equal(t, 1, got.Total)
}

func TestBadgerStore_VersionsAreIsolated(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	snap := &domain.Snapshot{Records: []domain.PhoneRecord{rec("1", "A55", 18290)}}
	require.NoError(t, s.ReplaceAll(ctx, "v5", snap, time.Hour))

	_, err := s.Get(ctx, "v6")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestBadgerStore_AppendBatch(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	// Offset 0 seeds the empty snapshot with the total.
	require.NoError(t, s.ReplaceAll(ctx, "v5", &domain.Snapshot{Total: 3}, time.Hour))

	merged, err := s.AppendBatch(ctx, "v5", []domain.PhoneRecord{
		rec("1", "A55", 18290),
		rec("2", "S24", 52990),
	}, time.Hour)
	require.NoError(t, err)
	assert.Len(t, merged.Records, 2)
	assert.Equal(t, 3, merged.Total)

	merged, err = s.AppendBatch(ctx, "v5", []domain.PhoneRecord{
		rec("3", "Redmi 13", 7499),
	}, time.Hour)
	require.NoError(t, err)
	require.Len(t, merged.Records, 3)

	// Input order is preserved across batches.
	ids := []string{merged.Records[0].ID, merged.Records[1].ID, merged.Records[2].ID}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestBadgerStore_AppendBatchIntoMissingSnapshot(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	merged, err := s.AppendBatch(context.Background(), "v5", []domain.PhoneRecord{
		rec("1", "A55", 18290),
	}, time.Hour)
	require.NoError(t, err)
	assert.Len(t, merged.Records, 1)
	assert.Zero(t, merged.Total)
}

func TestBadgerStore_Invalidate(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	snap := &domain.Snapshot{Records: []domain.PhoneRecord{rec("1", "A55", 18290)}}
	require.NoError(t, s.ReplaceAll(ctx, "v5", snap, time.Hour))

	require.NoError(t, s.Invalidate(ctx, "v5"))

	_, err := s.Get(ctx, "v5")
	assert.ErrorIs(t, err, cache.ErrMiss)

	// Invalidating an absent version is a no-op.
	assert.NoError(t, s.Invalidate(ctx, "v5"))
}

func TestBadgerStore_ContextCancellation(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx, "v5")
	assert.ErrorIs(t, err, context.Canceled)

	err = s.ReplaceAll(ctx, "v5", &domain.Snapshot{}, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}
