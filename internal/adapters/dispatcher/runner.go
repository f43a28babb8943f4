// Package dispatcher provides the adapter that drives the notification queue on a fixed interval.
package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/target/order-notify/internal/observability/metrics"
	"github.com/target/order-notify/internal/observability/statsd"
)

// DefaultInterval is used when RunnerOptions.Interval is not positive.
const DefaultInterval = 1500 * time.Millisecond

// Queue is the part of the notification queue the runner drives.
type Queue interface {
	Tick(ctx context.Context, now time.Time) int
	Wait()
	InFlight() int
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Queue    Queue
	Interval time.Duration
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

// Runner calls Queue.Tick at a fixed interval until its context is cancelled.
// Nothing is dispatched until Run is called.
type Runner struct {
	queue    Queue
	interval time.Duration
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewRunner creates a new dispatcher runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if err := validateRunnerOptions(&opts); err != nil {
		return nil, err
	}
	return &Runner{
		queue:    opts.Queue,
		interval: opts.Interval,
		logger:   opts.Logger.With("component", "dispatcher"),
		metrics:  opts.Metrics,
	}, nil
}

func validateRunnerOptions(opts *RunnerOptions) error {
	if opts.Queue == nil {
		return errors.New("queue is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return nil
}

// Run starts the dispatch loop. On shutdown it stops claiming new jobs and
// waits for in-flight deliveries before returning.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting dispatcher", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "dispatcher stopping, draining deliveries",
				"in_flight", r.queue.InFlight(),
				"reason", ctx.Err(),
			)
			r.queue.Wait()
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case now := <-ticker.C:
			r.RunOnce(ctx, now)
		}
	}
}

// RunOnce performs a single dispatch round at now and returns the number of jobs claimed.
func (r *Runner) RunOnce(ctx context.Context, now time.Time) int {
	start := time.Now()
	claimed := r.queue.Tick(ctx, now)
	elapsed := time.Since(start)

	if claimed > 0 {
		r.logger.DebugContext(ctx, "dispatched notifications", "claimed", claimed)
	}
	metrics.EmitTick(r.metrics, metrics.TickMetric{
		Claimed:  claimed,
		InFlight: r.queue.InFlight(),
		Duration: elapsed,
	})
	return claimed
}
