package client

import (
	"context"
	"fmt"
	"net/url"

	domain "github.com/gadgetph/phone-catalog/pkg/types"
)

// PhonesResult is the decoded response of the catalog list endpoint.
type PhonesResult struct {
	Phones        []domain.PhoneRecord `json:"phones"`
	Total         int                  `json:"total"`
	TotalFiltered int                  `json:"totalFiltered"`
	Window        int                  `json:"window"`
	HasMore       bool                 `json:"hasMore"`
}

// ListPhones queries the catalog list with the given filters.
func (c *Client) ListPhones(ctx context.Context, q domain.Query) (*PhonesResult, error) {
	params := url.Values{}
	if q.SearchText != "" {
		params.Set("search", q.SearchText)
	}
	if q.Brand != "" {
		params.Set("brand", q.Brand)
	}
	if q.Bucket != "" && q.Bucket != domain.BucketAll {
		params.Set("bucket", string(q.Bucket))
	}
	if q.SortKey != "" {
		params.Set("sort_key", q.SortKey)
		params.Set("sort_dir", string(q.SortDir))
	}

	path := "/api/v1/phones"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var result PhonesResult
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListBrands returns the distinct brands in the current snapshot.
func (c *Client) ListBrands(ctx context.Context) ([]string, error) {
	var resp struct {
		Brands []string `json:"brands"`
	}
	if err := c.get(ctx, "/api/v1/brands", &resp); err != nil {
		return nil, err
	}
	return resp.Brands, nil
}

// ListDrops returns the price drop leaderboard, optionally filtered by brand.
func (c *Client) ListDrops(ctx context.Context, brand string, limit int) ([]domain.PriceDrop, error) {
	params := url.Values{}
	if brand != "" {
		params.Set("brand", brand)
	}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}

	path := "/api/v1/views/drops"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp struct {
		Drops []domain.PriceDrop `json:"drops"`
	}
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Drops, nil
}
