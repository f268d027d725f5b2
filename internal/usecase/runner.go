package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsHarvester/internal/ports"
)

// Runner wires the interval drivers to the pipeline passes.
type Runner struct {
	pipeline  *Pipeline
	discovery ports.Scheduler
	retry     ports.Scheduler
	cleanup   ports.Scheduler
	logger    *slog.Logger
}

// NewRunner returns a helper to start/stop the recurring passes.
func NewRunner(pipeline *Pipeline, discovery, retry, cleanup ports.Scheduler, logger *slog.Logger) *Runner {
	return &Runner{
		pipeline:  pipeline,
		discovery: discovery,
		retry:     retry,
		cleanup:   cleanup,
		logger:    logger,
	}
}

// Start registers each pass with its driver.
func (r *Runner) Start(ctx context.Context) error {
	if r.pipeline == nil {
		return nil
	}

	if err := r.start(ctx, r.discovery, "discovery", r.pipeline.RunDiscovery); err != nil {
		return err
	}
	if err := r.start(ctx, r.retry, "retry", r.pipeline.RunRetryPass); err != nil {
		return err
	}
	return r.start(ctx, r.cleanup, "cleanup", r.pipeline.RunCleanupPass)
}

func (r *Runner) start(ctx context.Context, driver ports.Scheduler, name string, pass func(context.Context) error) error {
	if driver == nil {
		return nil
	}
	return driver.Start(ctx, func(time.Time) {
		if err := pass(ctx); err != nil && r.logger != nil {
			r.logger.Error("pass failed", "pass", name, "error", err)
		}
	})
}

// Stop gracefully tears down all drivers.
func (r *Runner) Stop(ctx context.Context) error {
	for _, driver := range []ports.Scheduler{r.discovery, r.retry, r.cleanup} {
		if driver == nil {
			continue
		}
		if err := driver.Stop(ctx); err != nil {
			return err
		}
	}
	return nil
}
