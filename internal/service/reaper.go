package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/target/order-notify/config"
	"github.com/target/order-notify/internal/core"
	"github.com/target/order-notify/internal/observability/metrics"
	"github.com/target/order-notify/internal/observability/statsd"
)

// ReaperServiceOptions groups dependencies for ReaperService.
type ReaperServiceOptions struct {
	Jobs    core.JobCleaner     // Required: job store to prune
	Config  config.ReaperConfig // Required: reaper configuration
	Logger  *slog.Logger        // Optional: structured logger
	Metrics statsd.Sink         // Optional: metrics sink (StatsD-compatible)
}

// ReaperService periodically drops completed and failed jobs so the
// in-memory store does not grow without bound.
type ReaperService struct {
	jobs    core.JobCleaner
	config  config.ReaperConfig
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewReaperService constructs a new ReaperService.
func NewReaperService(opts ReaperServiceOptions) (*ReaperService, error) {
	if opts.Jobs == nil {
		return nil, errors.New("JobCleaner is required")
	}
	if opts.Config.Interval <= 0 {
		return nil, errors.New("reaper interval must be positive")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "reaper_service")
	logger.Debug("ReaperService initialized",
		"interval", opts.Config.Interval,
		"max_age", opts.Config.MaxAge,
	)

	return &ReaperService{
		jobs:    opts.Jobs,
		config:  opts.Config,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Run starts the reaper loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *ReaperService) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting reaper service", "interval", s.config.Interval)

	// Spread instances that start together.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "reaper service stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single cleanup pass and returns the number of jobs removed.
func (s *ReaperService) RunOnce(ctx context.Context) int {
	start := time.Now()
	removed := s.jobs.Cleanup(s.config.MaxAge)

	if removed > 0 {
		s.logger.InfoContext(ctx, "removed old notification jobs",
			"count", removed,
			"max_age", s.config.MaxAge,
		)
	}
	s.emitCleanupMetrics(removed, time.Since(start))
	return removed
}

// waitWithJitter adds a random delay up to 10% of the interval.
func (s *ReaperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	timer := time.NewTimer(jitter)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (s *ReaperService) emitCleanupMetrics(removed int, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}

	result := metrics.ResultSuccess
	if removed == 0 {
		result = metrics.ResultNoop
	}
	tags := map[string]string{"result": result}

	s.metrics.Count("reaper.cleanup", 1, tags)
	if elapsed > 0 {
		s.metrics.Timing("reaper.cleanup_duration", elapsed, metrics.CloneTags(tags))
	}
	if removed > 0 {
		s.metrics.Count("reaper.jobs_removed", int64(removed), nil)
	}
	s.metrics.Gauge("reaper.last_success_epoch", float64(time.Now().Unix()), nil)
}
