package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gadgetph/phone-catalog/internal/cache"
	"github.com/gadgetph/phone-catalog/internal/query"
	domain "github.com/gadgetph/phone-catalog/pkg/types"
)

// ViewsHandler serves the precomputed aggregation views: segment leaders,
// popular picks, and the price drop leaderboard.
type ViewsHandler struct {
	store   cache.Store
	version string
}

// NewViewsHandler creates a new ViewsHandler.
func NewViewsHandler(store cache.Store, version string) *ViewsHandler {
	return &ViewsHandler{store: store, version: version}
}

// --- Input/Output types ---

// SegmentsOutput is the response for the per-bucket best-value shortlists.
type SegmentsOutput struct {
	Body struct {
		Segments []query.Segment `json:"segments"`
	}
}

// PicksOutput is the response for the editor's picks strip.
type PicksOutput struct {
	Body struct {
		Picks []domain.PhoneRecord `json:"picks"`
	}
}

// DropsInput is the input for the price drop leaderboard.
type DropsInput struct {
	Brand string `query:"brand" doc:"Brand filter; 'all' or empty disables"`
	Limit int    `query:"limit" doc:"Maximum rows; explicit 0 returns everything" minimum:"0" default:"3"`
}

// DropsOutput is the response for the price drop leaderboard.
type DropsOutput struct {
	Body struct {
		Drops []domain.PriceDrop `json:"drops"`
	}
}

// --- Handlers ---

// Segments returns the best-value shortlist for each price bucket.
func (h *ViewsHandler) Segments(ctx context.Context, _ *struct{}) (*SegmentsOutput, error) {
	snap, err := h.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	resp := &SegmentsOutput{}
	resp.Body.Segments = query.SegmentLeaders(snap.Records)
	return resp, nil
}

// Picks returns the editor-curated popular picks.
func (h *ViewsHandler) Picks(ctx context.Context, _ *struct{}) (*PicksOutput, error) {
	snap, err := h.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	resp := &PicksOutput{}
	resp.Body.Picks = query.PopularPicks(snap.Records)
	return resp, nil
}

// Drops returns the discount leaderboard. Completed snapshots carry it
// precomputed; older encodings without it are recomputed on the fly.
func (h *ViewsHandler) Drops(ctx context.Context, input *DropsInput) (*DropsOutput, error) {
	snap, err := h.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	resp := &DropsOutput{}
	if snap.Drops != nil {
		resp.Body.Drops = query.FilterDrops(snap.Drops, input.Brand, input.Limit)
	} else {
		resp.Body.Drops = query.PriceDrops(snap.Records, input.Brand, input.Limit)
	}
	return resp, nil
}

func (h *ViewsHandler) snapshot(ctx context.Context) (*domain.Snapshot, error) {
	snap, err := h.store.Get(ctx, h.version)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, huma.Error503ServiceUnavailable("catalog not built")
		}
		return nil, huma.Error500InternalServerError("reading catalog: " + err.Error())
	}
	return snap, nil
}

// RegisterViewRoutes registers aggregation view endpoints with the Huma API.
func RegisterViewRoutes(api huma.API, h *ViewsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "view-segments",
		Method:      http.MethodGet,
		Path:        "/api/v1/views/segments",
		Summary:     "Best value per price segment",
		Tags:        []string{"views"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, h.Segments)

	huma.Register(api, huma.Operation{
		OperationID: "view-picks",
		Method:      http.MethodGet,
		Path:        "/api/v1/views/picks",
		Summary:     "Editor's popular picks",
		Tags:        []string{"views"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, h.Picks)

	huma.Register(api, huma.Operation{
		OperationID: "view-drops",
		Method:      http.MethodGet,
		Path:        "/api/v1/views/drops",
		Summary:     "Price drop leaderboard",
		Tags:        []string{"views"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, h.Drops)
}
