package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gadgetph/phone-catalog/internal/engine"
	"github.com/gadgetph/phone-catalog/pkg/logger"
)

func TestNewScheduler(t *testing.T) {
	t.Parallel()

	src := &fakeSource{failAtOffset: -1}
	r, _ := newTestRebuilder(t, src)

	s, err := engine.NewScheduler(r, 6*time.Hour, logger.Nop())
	require.NoError(t, err)
	assert.Len(t, s.Entries(), 1)
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	src := &fakeSource{failAtOffset: -1}
	r, _ := newTestRebuilder(t, src)

	s, err := engine.NewScheduler(r, time.Hour, logger.Nop())
	require.NoError(t, err)

	s.Start()
	stopCtx := s.Stop()

	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop in time")
	}
}

func TestScheduler_RefreshRuns(t *testing.T) {
	t.Parallel()

	src := &fakeSource{products: makeProducts(5), failAtOffset: -1}
	r, store := newTestRebuilder(t, src)

	// Drive the rebuild directly rather than waiting on a cron tick.
	_, err := r.RunAll(context.Background())
	require.NoError(t, err)

	snap, err := store.Get(context.Background(), "v5")
	require.NoError(t, err)
	assert.Len(t, snap.Records, 5)
}
