package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gadgetph/phone-catalog/internal/cache"
	"github.com/gadgetph/phone-catalog/internal/query"
	domain "github.com/gadgetph/phone-catalog/pkg/types"
)

// PhonesHandler handles catalog list queries.
type PhonesHandler struct {
	store   cache.Store
	engine  *query.Engine
	version string
}

// NewPhonesHandler creates a new PhonesHandler.
func NewPhonesHandler(store cache.Store, engine *query.Engine, version string) *PhonesHandler {
	return &PhonesHandler{store: store, engine: engine, version: version}
}

// --- Input/Output types ---

// ListPhonesInput is the input for querying the phone list.
type ListPhonesInput struct {
	Search  string `query:"search"   doc:"Free-text search across name, brand, and specs"`
	Brand   string `query:"brand"    doc:"Brand filter; 'all' or empty disables"`
	Bucket  string `query:"bucket"   doc:"Price bucket filter"                            enum:"all,budget,midrange,premium,flagship,"`
	SortKey string `query:"sort_key" doc:"Sort field"                                     enum:"price,name,brand,"`
	SortDir string `query:"sort_dir" doc:"Sort direction"                                 enum:"asc,desc,"`
	Window  int    `query:"window"   doc:"Current window size, round-tripped"             minimum:"0"`
	Action  string `query:"action"   doc:"Windowing gesture"                              enum:"reset,more,all,"`
}

// ListPhonesOutput is the response for querying the phone list.
type ListPhonesOutput struct {
	Body struct {
		Phones        []domain.PhoneRecord `json:"phones"`
		Total         int                  `json:"total"`
		TotalFiltered int                  `json:"totalFiltered"`
		Window        int                  `json:"window"`
		HasMore       bool                 `json:"hasMore"`
		LastUpdated   time.Time            `json:"lastUpdated"`
	}
}

// --- Handlers ---

// ListPhones filters, sorts, and windows the cached catalog snapshot.
func (h *PhonesHandler) ListPhones(
	ctx context.Context,
	input *ListPhonesInput,
) (*ListPhonesOutput, error) {
	snap, err := h.store.Get(ctx, h.version)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, huma.Error503ServiceUnavailable("catalog not built")
		}
		return nil, huma.Error500InternalServerError("reading catalog: " + err.Error())
	}

	q := domain.Query{
		SearchText: input.Search,
		Brand:      input.Brand,
		Bucket:     domain.ParseBucket(input.Bucket),
		SortKey:    input.SortKey,
		SortDir:    domain.SortDirection(input.SortDir),
	}
	sess := query.Session{Query: q, Window: input.Window}

	view, _ := h.engine.Apply(snap.Records, q, sess, query.Action(input.Action))

	resp := &ListPhonesOutput{}
	resp.Body.Phones = view.Visible
	resp.Body.Total = len(snap.Records)
	resp.Body.TotalFiltered = view.TotalFiltered
	resp.Body.Window = view.Window
	resp.Body.HasMore = view.HasMore
	resp.Body.LastUpdated = snap.UpdatedAt

	return resp, nil
}

// RegisterPhoneRoutes registers catalog list endpoints with the Huma API.
func RegisterPhoneRoutes(api huma.API, h *PhonesHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-phones",
		Method:      http.MethodGet,
		Path:        "/api/v1/phones",
		Summary:     "Query the phone catalog",
		Description: "Filters, sorts, and windows the cached catalog snapshot.",
		Tags:        []string{"phones"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, h.ListPhones)
}
