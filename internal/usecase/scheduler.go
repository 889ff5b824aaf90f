package usecase

import (
	"context"
	"log/slog"
	"time"

	"TechNewsAgent/internal/domain"
	"TechNewsAgent/internal/ports"
)

// Runner is the part of the pipeline the scheduler drives.
type Runner interface {
	Run(ctx context.Context, opts RunOptions) domain.RunResult
}

// Scheduler wires the cron-like driver with the pipeline use case.
type Scheduler struct {
	driver ports.Scheduler
	runner Runner
	opts   RunOptions
	logger *slog.Logger
}

// NewScheduler returns a helper that runs the pipeline on every trigger.
func NewScheduler(driver ports.Scheduler, runner Runner, opts RunOptions, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, runner: runner, opts: opts, logger: logger}
}

// Start blocks until ctx is done. A failed run is logged and the loop continues.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.runner == nil {
		return nil
	}

	job := func(jobCtx context.Context, trigger time.Time) {
		result := s.runner.Run(jobCtx, s.opts)
		if s.logger == nil {
			return
		}
		if result.OK() {
			s.logger.Info("scheduled run completed", "trigger", trigger.Format(time.RFC3339), "run_id", result.RunID, "path", result.Path)
			return
		}
		s.logger.Warn("scheduled run did not succeed", "trigger", trigger.Format(time.RFC3339), "run_id", result.RunID, "status", result.Status, "message", result.Message)
	}

	return s.driver.Run(ctx, job)
}
