package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/order-notify/config"
	"github.com/target/order-notify/internal/adapters/dispatcher"
	"github.com/target/order-notify/internal/adapters/reaper"
	"github.com/target/order-notify/internal/core"
	"github.com/target/order-notify/internal/observability/statsd"
)

// DispatcherConfig contains configuration for the dispatch loop.
type DispatcherConfig struct {
	Queue    dispatcher.Queue
	Interval time.Duration
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

// RunDispatcher starts the notification dispatch loop and blocks until ctx is cancelled.
func RunDispatcher(ctx context.Context, cfg DispatcherConfig) error {
	runner, err := dispatcher.NewRunner(dispatcher.RunnerOptions{
		Queue:    cfg.Queue,
		Interval: cfg.Interval,
		Logger:   cfg.Logger,
		Metrics:  cfg.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create dispatcher runner: %w", err)
	}

	return runner.Run(ctx)
}

// ReaperConfig contains configuration for reaper.
type ReaperConfig struct {
	Jobs    core.JobCleaner
	Logger  *slog.Logger
	Config  config.ReaperConfig
	Metrics statsd.Sink
}

// RunReaper starts the reaper service.
func RunReaper(ctx context.Context, cfg ReaperConfig) error {
	runner, err := reaper.NewRunner(reaper.RunnerOptions{
		Jobs:    cfg.Jobs,
		Config:  cfg.Config,
		Logger:  cfg.Logger,
		Metrics: cfg.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create reaper runner: %w", err)
	}

	return runner.Run(ctx)
}
