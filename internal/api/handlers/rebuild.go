package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gadgetph/phone-catalog/internal/cache"
	domain "github.com/gadgetph/phone-catalog/pkg/types"
)

// BatchRunner runs one rebuild step at an offset.
type BatchRunner interface {
	RunBatch(ctx context.Context, offset int) (*domain.RebuildProgress, error)
}

// RebuildHandler drives batched catalog rebuilds and invalidation.
type RebuildHandler struct {
	runner  BatchRunner
	store   cache.Store
	version string
}

// NewRebuildHandler creates a new RebuildHandler.
func NewRebuildHandler(runner BatchRunner, store cache.Store, version string) *RebuildHandler {
	return &RebuildHandler{runner: runner, store: store, version: version}
}

// --- Input/Output types ---

// RunBatchInput is the input for a single rebuild step.
type RunBatchInput struct {
	Body struct {
		Offset int `json:"offset" doc:"Batch start offset; 0 begins a fresh rebuild" minimum:"0"`
	}
}

// RunBatchOutput is the progress response for a rebuild step.
type RunBatchOutput struct {
	Body domain.RebuildProgress
}

// --- Handlers ---

// RunBatch executes one rebuild step. The driver loops with increasing
// offsets until the response reports done.
func (h *RebuildHandler) RunBatch(
	ctx context.Context,
	input *RunBatchInput,
) (*RunBatchOutput, error) {
	progress, err := h.runner.RunBatch(ctx, input.Body.Offset)
	if err != nil {
		return nil, huma.Error500InternalServerError("rebuild batch failed: " + err.Error())
	}
	return &RunBatchOutput{Body: *progress}, nil
}

// InvalidateOutput is the response for snapshot invalidation.
type InvalidateOutput struct {
	Body StatusResponse
}

// Invalidate drops the current snapshot so the next read misses. Upstream
// product changes call this to force a rebuild.
func (h *RebuildHandler) Invalidate(
	ctx context.Context,
	_ *struct{},
) (*InvalidateOutput, error) {
	if err := h.store.Invalidate(ctx, h.version); err != nil {
		return nil, huma.Error500InternalServerError("invalidation failed: " + err.Error())
	}
	return &InvalidateOutput{Body: StatusResponse{Status: "invalidated"}}, nil
}

// RegisterRebuildRoutes registers rebuild endpoints with the Huma API.
func RegisterRebuildRoutes(api huma.API, h *RebuildHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "rebuild-batch",
		Method:      http.MethodPost,
		Path:        "/api/v1/rebuild/batch",
		Summary:     "Run one rebuild batch",
		Description: "Executes one rebuild step; loop with increasing offsets until done.",
		Tags:        []string{"rebuild"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.RunBatch)

	huma.Register(api, huma.Operation{
		OperationID: "invalidate-catalog",
		Method:      http.MethodPost,
		Path:        "/api/v1/invalidate",
		Summary:     "Invalidate the catalog snapshot",
		Tags:        []string{"rebuild"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.Invalidate)
}
