package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gadgetph/phone-catalog/internal/cache"
)

// BrandsHandler serves the distinct brand list for filter dropdowns.
type BrandsHandler struct {
	store   cache.Store
	version string
}

// NewBrandsHandler creates a new BrandsHandler.
func NewBrandsHandler(store cache.Store, version string) *BrandsHandler {
	return &BrandsHandler{store: store, version: version}
}

// BrandsOutput is the response for the brand list.
type BrandsOutput struct {
	Body struct {
		Brands []string `json:"brands"`
	}
}

// ListBrands returns the distinct brands in the current snapshot, sorted.
func (h *BrandsHandler) ListBrands(ctx context.Context, _ *struct{}) (*BrandsOutput, error) {
	snap, err := h.store.Get(ctx, h.version)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, huma.Error503ServiceUnavailable("catalog not built")
		}
		return nil, huma.Error500InternalServerError("reading catalog: " + err.Error())
	}

	resp := &BrandsOutput{}
	resp.Body.Brands = snap.Brands()
	return resp, nil
}

// RegisterBrandRoutes registers the brand list endpoint with the Huma API.
func RegisterBrandRoutes(api huma.API, h *BrandsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-brands",
		Method:      http.MethodGet,
		Path:        "/api/v1/brands",
		Summary:     "List catalog brands",
		Tags:        []string{"phones"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, h.ListBrands)
}
