package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gadgetph/phone-catalog/internal/api/handlers"
	"github.com/gadgetph/phone-catalog/internal/cache"
	domain "github.com/gadgetph/phone-catalog/pkg/types"
)

// stubRunner is a test double for BatchRunner.
type stubRunner struct {
	gotOffset int
	progress  *domain.RebuildProgress
	err       error
}

func (s *stubRunner) RunBatch(_ context.Context, offset int) (*domain.RebuildProgress, error) {
	s.gotOffset = offset
	return s.progress, s.err
}

func TestRebuildHandler_RunBatch(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{progress: &domain.RebuildProgress{
		Processed:  100,
		Total:      150,
		Percentage: 67,
	}}
	store := newSnapshotStore(t, nil)
	h := handlers.NewRebuildHandler(runner, store, testVersion)

	_, api := humatest.New(t)
	handlers.RegisterRebuildRoutes(api, h)

	resp := api.Post("/api/v1/rebuild/batch", strings.NewReader(`{"offset":0}`))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 0, runner.gotOffset)
	assert.Contains(t, resp.Body.String(), `"processed":100`)
	assert.Contains(t, resp.Body.String(), `"percentage":67`)
	assert.Contains(t, resp.Body.String(), `"done":false`)

	resp = api.Post("/api/v1/rebuild/batch", strings.NewReader(`{"offset":100}`))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 100, runner.gotOffset)
}

func TestRebuildHandler_RunBatch_Error(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{err: errors.New("store down")}
	store := newSnapshotStore(t, nil)
	h := handlers.NewRebuildHandler(runner, store, testVersion)

	_, api := humatest.New(t)
	handlers.RegisterRebuildRoutes(api, h)

	resp := api.Post("/api/v1/rebuild/batch", strings.NewReader(`{"offset":0}`))
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "rebuild batch failed")
}

func TestRebuildHandler_Invalidate(t *testing.T) {
	t.Parallel()

	store := newSnapshotStore(t, testSnapshot())
	h := handlers.NewRebuildHandler(&stubRunner{}, store, testVersion)

	_, api := humatest.New(t)
	handlers.RegisterRebuildRoutes(api, h)

	resp := api.Post("/api/v1/invalidate", strings.NewReader(``))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"invalidated"`)

	_, err := store.Get(context.Background(), testVersion)
	assert.ErrorIs(t, err, cache.ErrMiss)
}
