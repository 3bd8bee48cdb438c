// Package notify defines the notification interface and implementations
// for catalog rebuild announcements.
package notify

import (
	"context"
	"time"

	domain "github.com/gadgetph/phone-catalog/pkg/types"
)

// RebuildPayload summarizes a completed catalog rebuild.
type RebuildPayload struct {
	Version  string
	Records  int
	Skipped  int
	Duration time.Duration
	TopDrops []domain.PriceDrop
}

// Notifier defines the interface for announcing completed rebuilds.
type Notifier interface {
	SendRebuildComplete(ctx context.Context, payload *RebuildPayload) error
}
