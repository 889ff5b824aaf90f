package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorhill/cronexpr"

	"TechNewsAgent/internal/ports"
)

// CronScheduler polls the clock at a fixed interval and fires the job whenever
// the cron expression's next activation has passed. The job runs on the polling
// goroutine, so runs never overlap.
type CronScheduler struct {
	spec     string
	expr     *cronexpr.Expression
	interval time.Duration
	location *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler parses spec (five-field cron or @daily style) and polls every interval.
func NewCronScheduler(spec string, interval time.Duration, loc *time.Location, logger *slog.Logger) (*CronScheduler, error) {
	expr, err := cronexpr.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", spec, err)
	}
	if interval <= 0 {
		interval = time.Minute
	}
	if loc == nil {
		loc = time.Local
	}
	return &CronScheduler{
		spec:     spec,
		expr:     expr,
		interval: interval,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Next returns the first activation strictly after t.
func (c *CronScheduler) Next(t time.Time) time.Time {
	return c.expr.Next(t.In(c.location))
}

// Run blocks until ctx is done, invoking job once per activation.
func (c *CronScheduler) Run(ctx context.Context, job func(context.Context, time.Time)) error {
	if job == nil {
		return nil
	}

	next := c.Next(c.now())
	c.info("scheduler started", "cron", c.spec, "next_run", next.Format(time.RFC3339))

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.info("scheduler stopped")
			return nil
		case <-ticker.C:
			now := c.now().In(c.location)
			if now.Before(next) {
				continue
			}
			job(ctx, now)
			next = c.Next(c.now())
			c.info("next run scheduled", "next_run", next.Format(time.RFC3339))
		}
	}
}

func (c *CronScheduler) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}
