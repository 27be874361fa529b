package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"trending_digest/internal/domain"
)

const defaultRunTimeout = 30 * time.Minute

// Runner defines one digest run.
type Runner interface {
	Run(ctx context.Context) (*domain.RunStats, error)
}

type Scheduler struct {
	runner     Runner
	spec       string
	runTimeout time.Duration
	logger     *slog.Logger
}

// NewScheduler runs runner on the standard 5-field cron spec (descriptors like @daily allowed).
func NewScheduler(runner Runner, spec string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:     runner,
		spec:       spec,
		runTimeout: defaultRunTimeout,
		logger:     logger,
	}
}

// Start blocks until ctx is cancelled. Overlapping runs are skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := c.AddFunc(s.spec, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	s.logger.Info("scheduler started", "schedule", s.spec)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")

	return ctx.Err()
}

func (s *Scheduler) run(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	if _, err := s.runner.Run(runCtx); err != nil {
		s.logger.Error("digest run failed", "error", err)
	}
}
