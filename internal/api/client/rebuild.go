package client

import (
	"context"
	"fmt"
	"io"

	domain "github.com/gadgetph/phone-catalog/pkg/types"
)

// RunRebuildBatch executes one rebuild step at the given offset.
func (c *Client) RunRebuildBatch(ctx context.Context, offset int) (*domain.RebuildProgress, error) {
	body := map[string]int{"offset": offset}

	var progress domain.RebuildProgress
	if err := c.post(ctx, "/api/v1/rebuild/batch", body, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

// Invalidate drops the current catalog snapshot server-side.
func (c *Client) Invalidate(ctx context.Context) error {
	return c.post(ctx, "/api/v1/invalidate", nil, nil)
}

// DriveRebuild loops rebuild batches from offset 0 until done, writing
// progress lines to w. batchSize must match the server's configured batch
// size so offsets line up.
func (c *Client) DriveRebuild(ctx context.Context, w io.Writer, batchSize int) (*domain.RebuildProgress, error) {
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		progress, err := c.RunRebuildBatch(ctx, offset)
		if err != nil {
			return nil, fmt.Errorf("batch at offset %d: %w", offset, err)
		}

		fmt.Fprintf(w, "rebuild %d%% (%d/%d)\n",
			progress.Percentage, progress.Processed, progress.Total)

		if progress.Done {
			return progress, nil
		}
		offset += batchSize
	}
}
