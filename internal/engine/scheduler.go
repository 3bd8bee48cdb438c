package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic full catalog refresh.
type Scheduler struct {
	cron      *cron.Cron
	rebuilder *Rebuilder
	log       *slog.Logger
}

// NewScheduler creates a Scheduler that refreshes the catalog snapshot on an
// interval.
func NewScheduler(
	r *Rebuilder,
	refreshInterval time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:      c,
		rebuilder: r,
		log:       log,
	}

	if _, err := c.AddFunc(
		"@every "+refreshInterval.String(),
		s.runRefresh,
	); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runRefresh() {
	ctx := context.Background()
	s.log.Info("scheduled catalog refresh starting")

	progress, err := s.rebuilder.RunAll(ctx)
	if err != nil {
		s.log.Error("scheduled catalog refresh failed", "error", err)
		return
	}

	s.log.Info("scheduled catalog refresh finished",
		"processed", progress.Processed,
		"total", progress.Total,
	)
}
