package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/target/order-notify/config"
	"github.com/target/order-notify/internal/core"
	domainjob "github.com/target/order-notify/internal/domain/job"
	"github.com/target/order-notify/internal/domain/model"
	apperrors "github.com/target/order-notify/internal/errors"
	"github.com/target/order-notify/internal/observability/metrics"
	"github.com/target/order-notify/internal/observability/statsd"
)

// QueueServiceOptions groups dependencies for QueueService.
type QueueServiceOptions struct {
	Deliverer core.Deliverer          // Required: renders and sends one job
	Config    config.DispatcherConfig // Required: concurrency, attempts, and backoff bounds
	Backoff   *domainjob.BackoffPolicy
	Clock     func() time.Time // Optional: defaults to time.Now
	NewID     func() string    // Optional: defaults to uuid v4
	Logger    *slog.Logger     // Optional: structured logger
	Metrics   statsd.Sink      // Optional: metrics sink (StatsD-compatible)
}

// QueueService owns the in-memory notification job collection and its dispatch.
//
// All reads and writes of job state happen under mu; only the delivery call
// runs outside it. Callers never see internal pointers, only copies.
type QueueService struct {
	mu       sync.Mutex
	jobs     []*model.Job
	inFlight map[string]struct{}

	deliverer     core.Deliverer
	backoff       *domainjob.BackoffPolicy
	maxConcurrent int
	maxAttempts   int
	now           func() time.Time
	newID         func() string
	logger        *slog.Logger
	metrics       statsd.Sink

	workers errgroup.Group
}

// NewQueueService constructs a new QueueService.
func NewQueueService(opts QueueServiceOptions) (*QueueService, error) {
	if opts.Deliverer == nil {
		return nil, errors.New("Deliverer is required")
	}

	cfg := opts.Config
	cfg.Sanitize()

	backoff := opts.Backoff
	if backoff == nil {
		var err error
		backoff, err = domainjob.NewBackoffPolicy(cfg.BackoffBase, cfg.BackoffMax)
		if err != nil {
			return nil, fmt.Errorf("create backoff policy: %w", err)
		}
	}

	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &QueueService{
		inFlight:      make(map[string]struct{}),
		deliverer:     opts.Deliverer,
		backoff:       backoff,
		maxConcurrent: cfg.MaxConcurrent,
		maxAttempts:   cfg.MaxAttempts,
		now:           now,
		newID:         newID,
		logger:        logger.With("component", "notification_queue"),
		metrics:       opts.Metrics,
	}
	s.workers.SetLimit(cfg.MaxConcurrent)
	return s, nil
}

// Enqueue validates the request and appends a new pending job. It never waits
// on delivery; the job is picked up by a later Tick.
func (s *QueueService) Enqueue(ctx context.Context, req *model.EnqueueRequest) (string, error) {
	if req == nil {
		return "", apperrors.Validation("enqueue request is required")
	}
	if err := req.Validate(); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid notification")
	}

	maxAttempts := req.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = s.maxAttempts
	}

	now := s.now()
	job := &model.Job{
		ID:          s.newID(),
		Kind:        req.Payload.Kind(),
		Recipient:   req.Recipient,
		StoreID:     req.StoreID,
		OrderID:     req.OrderID,
		Payload:     model.ClonePayload(req.Payload),
		MaxAttempts: maxAttempts,
		ScheduledAt: now,
		CreatedAt:   now,
	}

	s.mu.Lock()
	s.jobs = append(s.jobs, job)
	depth := len(s.jobs)
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "notification enqueued",
		"job_id", job.ID,
		"kind", job.Kind,
		"store_id", job.StoreID,
		"order_id", job.OrderID,
	)
	metrics.EmitJobLifecycle(s.metrics, metrics.JobMetric{
		Kind:       string(job.Kind),
		Transition: metrics.TransitionEnqueued,
		Result:     metrics.ResultSuccess,
	})
	if s.metrics != nil {
		s.metrics.Gauge("notification.queue_depth", float64(depth), nil)
	}
	return job.ID, nil
}

// Stats returns live counts. Pending excludes jobs that are in flight.
func (s *QueueService) Stats() model.JobStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats model.JobStats
	for _, job := range s.jobs {
		switch s.statusLocked(job) {
		case model.JobStatusPending:
			stats.Pending++
		case model.JobStatusProcessing:
			stats.Processing++
		case model.JobStatusCompleted:
			stats.Completed++
		case model.JobStatusFailed:
			stats.Failed++
		}
	}
	return stats
}

// JobsByStatus returns copies of the jobs in status, in dispatch order.
func (s *QueueService) JobsByStatus(status model.JobStatus) []model.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Job, 0)
	for _, job := range s.jobs {
		if s.statusLocked(job) == status {
			out = append(out, job.Clone())
		}
	}
	return out
}

// Get returns a copy of a single job.
func (s *QueueService) Get(id string) (model.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, job := s.findLocked(id); job != nil {
		return job.Clone(), true
	}
	return model.Job{}, false
}

// StatusOf reports the current status of a job including in-flight state.
func (s *QueueService) StatusOf(id string) (model.JobStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, job := s.findLocked(id); job != nil {
		return s.statusLocked(job), true
	}
	return "", false
}

// Snapshot returns a copy of a job together with its status, read under one lock.
func (s *QueueService) Snapshot(id string) (model.Job, model.JobStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, job := s.findLocked(id)
	if job == nil {
		return model.Job{}, "", false
	}
	return job.Clone(), s.statusLocked(job), true
}

// Cancel fails a pending job that is not in flight.
func (s *QueueService) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, job := s.findLocked(id)
	if job == nil || job.Terminal() || s.isInFlightLocked(id) {
		return false
	}

	now := s.now()
	job.FailedAt = &now
	job.LastError = model.CancelledError
	s.logger.Info("notification cancelled", "job_id", id)
	s.emitTransition(job, metrics.TransitionCancelled, metrics.ResultSuccess, nil)
	return true
}

// Retry resets a failed job so it is dispatched again from attempt zero.
func (s *QueueService) Retry(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, job := s.findLocked(id)
	if job == nil || job.FailedAt == nil {
		return false
	}

	job.FailedAt = nil
	job.LastError = ""
	job.Attempts = 0
	job.ScheduledAt = s.now()
	if job.ScheduledAt.Before(job.CreatedAt) {
		job.ScheduledAt = job.CreatedAt
	}
	s.logger.Info("notification retried by operator", "job_id", id)
	s.emitTransition(job, metrics.TransitionRetried, metrics.ResultSuccess, nil)
	return true
}

// Prioritize moves a pending, not in-flight job to the front of dispatch order.
func (s *QueueService) Prioritize(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, job := s.findLocked(id)
	if job == nil || job.Terminal() || s.isInFlightLocked(id) {
		return false
	}

	copy(s.jobs[1:idx+1], s.jobs[:idx])
	s.jobs[0] = job
	return true
}

// Cleanup removes completed and failed jobs created more than maxAge ago and
// returns how many were removed. Pending and in-flight jobs are always kept.
func (s *QueueService) Cleanup(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)
	kept := s.jobs[:0]
	removed := 0
	for _, job := range s.jobs {
		if job.Terminal() && !s.isInFlightLocked(job.ID) && job.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, job)
	}
	for i := len(kept); i < len(s.jobs); i++ {
		s.jobs[i] = nil
	}
	s.jobs = kept
	return removed
}

// Tick runs one dispatch round at now and returns how many jobs were claimed.
// Claimed jobs are delivered concurrently; use Wait to block until they finish.
func (s *QueueService) Tick(ctx context.Context, now time.Time) int {
	batch := s.claim(now)
	if len(batch) == 0 {
		return 0
	}

	// Deliveries outlive a cancelled tick context so shutdown can drain them.
	deliveryCtx := context.WithoutCancel(ctx)
	for _, job := range batch {
		s.workers.Go(func() error {
			s.process(deliveryCtx, job)
			return nil
		})
	}
	return len(batch)
}

// Wait blocks until every delivery started by Tick has finished.
func (s *QueueService) Wait() {
	_ = s.workers.Wait()
}

// InFlight returns the number of deliveries currently running.
func (s *QueueService) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inFlight)
}

func (s *QueueService) claim(now time.Time) []model.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	capacity := s.maxConcurrent - len(s.inFlight)
	if capacity <= 0 {
		return nil
	}

	batch := make([]model.Job, 0, capacity)
	for _, job := range s.jobs {
		if len(batch) == capacity {
			break
		}
		if s.isInFlightLocked(job.ID) || !job.Eligible(now) {
			continue
		}
		s.inFlight[job.ID] = struct{}{}
		batch = append(batch, job.Clone())
	}
	return batch
}

func (s *QueueService) process(ctx context.Context, job model.Job) {
	start := s.now()
	err := s.deliverer.Deliver(ctx, job)
	s.finish(ctx, job.ID, err, s.now().Sub(start))
}

func (s *QueueService) finish(ctx context.Context, id string, deliveryErr error, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight, id)
	_, job := s.findLocked(id)
	if job == nil || job.Terminal() {
		return
	}

	now := s.now()
	if deliveryErr == nil {
		job.ProcessedAt = &now
		s.logger.InfoContext(ctx, "notification delivered",
			"job_id", id,
			"kind", job.Kind,
			"attempt", job.Attempts+1,
		)
		s.emitTransition(job, metrics.TransitionCompleted, metrics.ResultSuccess, nil, elapsed)
		return
	}

	job.Attempts++
	job.LastError = deliveryErr.Error()
	if job.Attempts >= job.MaxAttempts {
		job.FailedAt = &now
		s.logger.ErrorContext(ctx, "notification failed permanently",
			"job_id", id,
			"kind", job.Kind,
			"attempts", job.Attempts,
			"error", deliveryErr,
		)
		s.emitTransition(job, metrics.TransitionFailed, metrics.ResultError, deliveryErr, elapsed)
		return
	}

	delay := s.backoff.Delay(job.Attempts)
	job.ScheduledAt = now.Add(delay)
	s.logger.WarnContext(ctx, "notification delivery failed, will retry",
		"job_id", id,
		"kind", job.Kind,
		"attempts", job.Attempts,
		"max_attempts", job.MaxAttempts,
		"retry_in", delay,
		"error", deliveryErr,
	)
	s.emitTransition(job, metrics.TransitionRescheduled, metrics.ResultError, deliveryErr, elapsed)
}

func (s *QueueService) statusLocked(job *model.Job) model.JobStatus {
	if s.isInFlightLocked(job.ID) {
		return model.JobStatusProcessing
	}
	return job.Status()
}

func (s *QueueService) isInFlightLocked(id string) bool {
	_, ok := s.inFlight[id]
	return ok
}

func (s *QueueService) findLocked(id string) (int, *model.Job) {
	for i, job := range s.jobs {
		if job.ID == id {
			return i, job
		}
	}
	return -1, nil
}

func (s *QueueService) emitTransition(job *model.Job, transition, result string, err error, elapsed ...time.Duration) {
	m := metrics.JobMetric{
		Kind:       string(job.Kind),
		Transition: transition,
		Result:     result,
		Err:        err,
	}
	if len(elapsed) > 0 {
		m.Duration = elapsed[0]
	}
	metrics.EmitJobLifecycle(s.metrics, m)
}
