package tlf

import (
	"context"
	"time"

	"tlf-sync/core/reconcile"

	"go.uber.org/zap"
)

// Scheduler triggers a cycle on a fixed period. Cycles run one at a time on
// the scheduler goroutine; ticks that fall due while a cycle runs are dropped.
type Scheduler struct {
	runner   reconcile.Runner
	interval time.Duration
	logger   *zap.Logger
}

// NewScheduler creates a scheduler.
func NewScheduler(runner reconcile.Runner, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{runner: runner, interval: interval, logger: logger}
}

// Run runs a cycle immediately and then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Warn("Scheduler disabled, interval must be positive", zap.Duration("interval", s.interval))
		return
	}
	s.logger.Info("Scheduler started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	result := s.runner.RunCycle(ctx)
	if result.Skipped {
		s.logger.Debug("Scheduled cycle skipped", zap.String("reason", result.Error))
	}
}
