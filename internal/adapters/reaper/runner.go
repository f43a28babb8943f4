// Package reaper provides adapters for running the notification job reaper.
package reaper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/order-notify/config"
	"github.com/target/order-notify/internal/core"
	"github.com/target/order-notify/internal/observability/statsd"
	"github.com/target/order-notify/internal/service"
)

// Runner provides a simple adapter to run the reaper loop.
// It constructs the reaper service and runs the cleanup loop.
type Runner struct {
	reaper *service.ReaperService
	logger *slog.Logger
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Jobs    core.JobCleaner
	Config  config.ReaperConfig
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// NewRunner creates a new reaper runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Jobs == nil {
		return nil, errors.New("job cleaner is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	cfg := opts.Config
	cfg.Sanitize()

	reaper, err := service.NewReaperService(service.ReaperServiceOptions{
		Jobs:    opts.Jobs,
		Config:  cfg,
		Logger:  opts.Logger,
		Metrics: opts.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("wire reaper service: %w", err)
	}

	return &Runner{reaper: reaper, logger: opts.Logger}, nil
}

// Run starts the reaper loop and runs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting reaper runner")
	return r.reaper.Run(ctx)
}
