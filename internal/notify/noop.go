package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by logging discarded announcements. It is
// used when Discord (or another notification backend) is not configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards announcements with a log
// message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// SendRebuildComplete logs and discards a rebuild announcement.
func (n *NoOpNotifier) SendRebuildComplete(_ context.Context, payload *RebuildPayload) error {
	n.log.Debug("rebuild notification discarded (no backend configured)",
		"version", payload.Version,
		"records", payload.Records,
		"skipped", payload.Skipped,
	)
	return nil
}
