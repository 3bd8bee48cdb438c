package engine_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gadgetph/phone-catalog/internal/cache"
	"github.com/gadgetph/phone-catalog/internal/catalog"
	"github.com/gadgetph/phone-catalog/internal/engine"
	"github.com/gadgetph/phone-catalog/internal/notify"
	"github.com/gadgetph/phone-catalog/pkg/logger"
)

// fakeSource serves a fixed product list with optional failure injection.
type fakeSource struct {
	products     []catalog.RawProduct
	failAtOffset int // -1 disables
	countErr     error
}

func (f *fakeSource) Count(_ context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.products), nil
}

func (f *fakeSource) List(_ context.Context, offset, limit int) ([]catalog.RawProduct, error) {
	if f.failAtOffset >= 0 && offset == f.failAtOffset {
		return nil, errors.New("store connection reset")
	}
	if offset >= len(f.products) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.products) {
		end = len(f.products)
	}
	return f.products[offset:end], nil
}

func (f *fakeSource) Ping(_ context.Context) error { return nil }

// recordingNotifier captures the completion payload.
type recordingNotifier struct {
	payload *notify.RebuildPayload
}

func (n *recordingNotifier) SendRebuildComplete(_ context.Context, p *notify.RebuildPayload) error {
	n.payload = p
	return nil
}

func makeProducts(n int) []catalog.RawProduct {
	out := make([]catalog.RawProduct, n)
	for i := range out {
		out[i] = catalog.RawProduct{
			ID:        fmt.Sprintf("%d", i+1),
			Title:     fmt.Sprintf("Phone %d", i+1),
			Price:     fmt.Sprintf("%d", 5000+i),
			Permalink: fmt.Sprintf("https://example.com/phone-%d", i+1),
			Terms: []catalog.Term{
				{Slug: "mobile-phones", Name: "Mobile Phones"},
				{Slug: "brand-x", Name: "Brand X"},
			},
		}
	}
	return out
}

func newTestRebuilder(t *testing.T, src catalog.Source, opts ...engine.RebuilderOption) (*engine.Rebuilder, cache.Store) {
	t.Helper()

	store, err := cache.Open("", logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	base := []engine.RebuilderOption{
		engine.WithLogger(logger.Nop()),
		engine.WithBatchSize(100),
	}
	r := engine.NewRebuilder(src, catalog.NewMapper(catalog.MapperConfig{}), store, "v5",
		append(base, opts...)...)
	return r, store
}

func TestRebuilder_RunBatch_TwoSteps(t *testing.T) {
	t.Parallel()

	src := &fakeSource{products: makeProducts(150), failAtOffset: -1}
	r, store := newTestRebuilder(t, src)
	ctx := context.Background()

	progress, err := r.RunBatch(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, progress.Processed)
	assert.Equal(t, 150, progress.Total)
	assert.Equal(t, 67, progress.Percentage)
	assert.False(t, progress.Done)

	progress, err = r.RunBatch(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 150, progress.Processed)
	assert.Equal(t, 100, progress.Percentage)
	assert.True(t, progress.Done)

	snap, err := store.Get(ctx, "v5")
	require.NoError(t, err)
	require.Len(t, snap.Records, 150)

	// No duplicates and source order preserved.
	assert.Equal(t, "1", snap.Records[0].ID)
	assert.Equal(t, "101", snap.Records[100].ID)
	assert.Equal(t, "150", snap.Records[149].ID)
}

func TestRebuilder_RunBatch_OffsetZeroRestarts(t *testing.T) {
	t.Parallel()

	src := &fakeSource{products: makeProducts(50), failAtOffset: -1}
	r, store := newTestRebuilder(t, src)
	ctx := context.Background()

	_, err := r.RunBatch(ctx, 0)
	require.NoError(t, err)

	// A second offset-0 run discards the earlier snapshot instead of
	// appending to it.
	_, err = r.RunBatch(ctx, 0)
	require.NoError(t, err)

	snap, err := store.Get(ctx, "v5")
	require.NoError(t, err)
	assert.Len(t, snap.Records, 50)
}

func TestRebuilder_RunBatch_SkipsCounted(t *testing.T) {
	t.Parallel()

	products := makeProducts(10)
	products[2].Price = ""             // not sellable
	products[5].Title = "Smart Watch"  // excluded accessory
	products[7].Price = "contact us"   // unparseable

	src := &fakeSource{products: products, failAtOffset: -1}
	r, store := newTestRebuilder(t, src)
	ctx := context.Background()

	progress, err := r.RunBatch(ctx, 0)
	require.NoError(t, err)
	assert.True(t, progress.Done)
	assert.Equal(t, 3, progress.Skipped)

	snap, err := store.Get(ctx, "v5")
	require.NoError(t, err)
	assert.Len(t, snap.Records, 7)
}

func TestRebuilder_RunBatch_EmptySource(t *testing.T) {
	t.Parallel()

	src := &fakeSource{failAtOffset: -1}
	r, _ := newTestRebuilder(t, src)

	progress, err := r.RunBatch(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, progress.Done)
	assert.Equal(t, 100, progress.Percentage)
	assert.Zero(t, progress.Total)
}

func TestRebuilder_RunBatch_CountError(t *testing.T) {
	t.Parallel()

	src := &fakeSource{countErr: errors.New("store down"), failAtOffset: -1}
	r, _ := newTestRebuilder(t, src)

	_, err := r.RunBatch(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "counting products")
}

func TestRebuilder_RunBatch_ListFailurePreservesCommitted(t *testing.T) {
	t.Parallel()

	src := &fakeSource{products: makeProducts(150), failAtOffset: 100}
	r, store := newTestRebuilder(t, src)
	ctx := context.Background()

	_, err := r.RunBatch(ctx, 0)
	require.NoError(t, err)

	_, err = r.RunBatch(ctx, 100)
	require.Error(t, err)

	// The first batch stays committed; the driver can retry the failed
	// offset without restarting from zero.
	snap, err := store.Get(ctx, "v5")
	require.NoError(t, err)
	assert.Len(t, snap.Records, 100)
}

func TestRebuilder_CompletionPublishesDropsAndNotifies(t *testing.T) {
	t.Parallel()

	products := makeProducts(5)
	products[1].RegularPrice = "9000" // price 5001, saves 3999
	products[3].RegularPrice = "6000" // price 5003, saves 997

	notifier := &recordingNotifier{}
	src := &fakeSource{products: products, failAtOffset: -1}
	r, store := newTestRebuilder(t, src, engine.WithNotifier(notifier))
	ctx := context.Background()

	progress, err := r.RunBatch(ctx, 0)
	require.NoError(t, err)
	require.True(t, progress.Done)

	snap, err := store.Get(ctx, "v5")
	require.NoError(t, err)
	require.Len(t, snap.Drops, 2)
	assert.Equal(t, "2", snap.Drops[0].ID)
	assert.Equal(t, "4", snap.Drops[1].ID)

	require.NotNil(t, notifier.payload)
	assert.Equal(t, "v5", notifier.payload.Version)
	assert.Equal(t, 5, notifier.payload.Records)
	assert.Len(t, notifier.payload.TopDrops, 2)
}

func TestRebuilder_RunAll(t *testing.T) {
	t.Parallel()

	src := &fakeSource{products: makeProducts(250), failAtOffset: -1}
	r, store := newTestRebuilder(t, src)
	ctx := context.Background()

	progress, err := r.RunAll(ctx)
	require.NoError(t, err)
	assert.True(t, progress.Done)
	assert.Equal(t, 250, progress.Processed)

	snap, err := store.Get(ctx, "v5")
	require.NoError(t, err)
	assert.Len(t, snap.Records, 250)
	assert.WithinDuration(t, time.Now(), snap.UpdatedAt, time.Minute)
}

func TestRebuilder_RunAll_Cancelled(t *testing.T) {
	t.Parallel()

	src := &fakeSource{products: makeProducts(50), failAtOffset: -1}
	r, _ := newTestRebuilder(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.RunAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
