// Package httpx provides the JSON API for producing and inspecting order notifications.
package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/target/order-notify/internal/core"
	"github.com/target/order-notify/internal/domain/model"
	apperrors "github.com/target/order-notify/internal/errors"
	"github.com/target/order-notify/internal/service"
)

// NotificationProducer queues notifications on behalf of HTTP callers.
type NotificationProducer interface {
	Send(ctx context.Context, dest service.Destination, payload model.Payload) (string, error)
	NotifyOrderStatusChange(ctx context.Context, change model.OrderStatusChange) (string, error)
}

// Action names accepted by POST /api/notifications/actions.
const (
	ActionRetry      = "retry_job"
	ActionCancel     = "cancel_job"
	ActionPrioritize = "prioritize_job"
)

// NotificationHandlers serves the queue inspection, control and producer endpoints.
type NotificationHandlers struct {
	Queue    core.QueueInspector
	Producer NotificationProducer
	Logger   *slog.Logger
}

// JobSummary is the operator-facing view of a job.
type JobSummary struct {
	ID          string          `json:"id"`
	Kind        model.Kind      `json:"kind"`
	Status      model.JobStatus `json:"status"`
	Recipient   string          `json:"recipient"`
	StoreID     string          `json:"store_id"`
	OrderID     string          `json:"order_id"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	CreatedAt   time.Time       `json:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	FailedAt    *time.Time      `json:"failed_at,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
}

func summarize(job model.Job, status model.JobStatus) JobSummary {
	return JobSummary{
		ID:          job.ID,
		Kind:        job.Kind,
		Status:      status,
		Recipient:   job.Recipient,
		StoreID:     job.StoreID,
		OrderID:     job.OrderID,
		Attempts:    job.Attempts,
		MaxAttempts: job.MaxAttempts,
		ScheduledAt: job.ScheduledAt,
		CreatedAt:   job.CreatedAt,
		ProcessedAt: job.ProcessedAt,
		FailedAt:    job.FailedAt,
		LastError:   job.LastError,
	}
}

// Stats handles GET /api/notifications/stats.
func (h *NotificationHandlers) Stats(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, h.Queue.Stats())
}

type jobListResponse struct {
	Status model.JobStatus `json:"status"`
	Jobs   []JobSummary    `json:"jobs"`
}

// ListJobs handles GET /api/notifications/jobs?status=.
func (h *NotificationHandlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	status := model.JobStatus(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))))
	if !status.Valid() {
		RenderError(w, r, apperrors.ValidationField("status",
			"status must be one of: pending, processing, completed, failed"), h.Logger)
		return
	}

	jobs := h.Queue.JobsByStatus(status)
	out := make([]JobSummary, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, summarize(job, status))
	}
	WriteJSON(w, http.StatusOK, jobListResponse{Status: status, Jobs: out})
}

// GetJob handles GET /api/notifications/jobs/{id}.
func (h *NotificationHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, status, ok := h.Queue.Snapshot(id)
	if !ok {
		RenderError(w, r, apperrors.NotFoundf("notification job %q not found", id), h.Logger)
		return
	}
	WriteJSON(w, http.StatusOK, summarize(job, status))
}

type actionRequest struct {
	Action string `json:"action"`
	JobID  string `json:"job_id"`
}

type actionResponse struct {
	Success bool `json:"success"`
}

// Action handles POST /api/notifications/actions. Rejected actions answer
// success=false; only an unknown action name is a client error.
func (h *NotificationHandlers) Action(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	var op func(string) bool
	switch req.Action {
	case ActionRetry:
		op = h.Queue.Retry
	case ActionCancel:
		op = h.Queue.Cancel
	case ActionPrioritize:
		op = h.Queue.Prioritize
	default:
		RenderError(w, r, apperrors.ValidationField("action",
			"action must be one of: retry_job, cancel_job, prioritize_job"), h.Logger)
		return
	}

	ok := op(strings.TrimSpace(req.JobID))
	if h.Logger != nil {
		h.Logger.InfoContext(r.Context(), "notification action",
			"action", req.Action,
			"job_id", req.JobID,
			"success", ok,
		)
	}
	WriteJSON(w, http.StatusOK, actionResponse{Success: ok})
}

type enqueueRequest struct {
	Kind        model.Kind      `json:"kind"`
	Recipient   string          `json:"recipient"`
	StoreID     string          `json:"store_id"`
	OrderID     string          `json:"order_id"`
	Payload     json.RawMessage `json:"payload"`
	MaxAttempts int             `json:"max_attempts,omitempty"`
}

type enqueueResponse struct {
	JobID string `json:"job_id"`
}

// Enqueue handles POST /api/notifications.
func (h *NotificationHandlers) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	payload, err := model.DecodePayload(req.Kind, req.Payload)
	if err != nil {
		field := "payload"
		if !req.Kind.Valid() {
			field = "kind"
		}
		RenderError(w, r, &apperrors.AppError{
			Code:    apperrors.ErrCodeValidation,
			Message: err.Error(),
			Field:   field,
			Cause:   err,
		}, h.Logger)
		return
	}

	id, err := h.Producer.Send(r.Context(), service.Destination{
		Recipient:   req.Recipient,
		StoreID:     req.StoreID,
		OrderID:     req.OrderID,
		MaxAttempts: req.MaxAttempts,
	}, payload)
	if err != nil {
		RenderError(w, r, err, h.Logger)
		return
	}
	WriteJSON(w, http.StatusAccepted, enqueueResponse{JobID: id})
}

type orderStatusResponse struct {
	JobID  string `json:"job_id,omitempty"`
	Queued bool   `json:"queued"`
}

// OrderStatusChanged handles POST /api/orders/{orderID}/status.
func (h *NotificationHandlers) OrderStatusChanged(w http.ResponseWriter, r *http.Request) {
	var change model.OrderStatusChange
	if !DecodeJSON(w, r, &change) {
		return
	}
	pathID := r.PathValue("orderID")
	if change.OrderID != "" && change.OrderID != pathID {
		RenderError(w, r, apperrors.ValidationField("order_id", "order id does not match the path"), h.Logger)
		return
	}
	change.OrderID = pathID

	id, err := h.Producer.NotifyOrderStatusChange(r.Context(), change)
	if err != nil {
		RenderError(w, r, err, h.Logger)
		return
	}
	if id == "" {
		WriteJSON(w, http.StatusOK, orderStatusResponse{Queued: false})
		return
	}
	WriteJSON(w, http.StatusAccepted, orderStatusResponse{JobID: id, Queued: true})
}
