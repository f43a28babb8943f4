// Package model defines the core data types shared by the order notification subsystem.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind identifies which template and payload shape a notification job uses.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type Kind string

// JobStatus represents the observable state of a notification job.
type JobStatus string

const (
	// KindConfirmation is sent once an order has been paid.
	KindConfirmation Kind = "confirmation"
	// KindStatusUpdate is sent when the store moves an order forward.
	KindStatusUpdate Kind = "status_update"
	// KindDeliveryNotice is sent when a courier leaves with the order.
	KindDeliveryNotice Kind = "delivery_notice"

	// JobStatusPending indicates a job is waiting for a dispatch slot or its backoff delay.
	JobStatusPending JobStatus = "pending"
	// JobStatusProcessing indicates a delivery attempt is in flight.
	JobStatusProcessing JobStatus = "processing"
	// JobStatusCompleted indicates the message was accepted by the messaging API.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates attempts were exhausted or the job was cancelled.
	JobStatusFailed JobStatus = "failed"
)

// DefaultMaxAttempts is applied when an enqueue request leaves MaxAttempts at zero.
const DefaultMaxAttempts = 3

// CancelledError is recorded as LastError on jobs cancelled by an operator.
const CancelledError = "cancelled"

var (
	// ErrStoreNotConfigured is returned when a store has no usable channel credentials.
	ErrStoreNotConfigured = errors.New("store not configured for messaging")
	// ErrInvalidPayload is returned when a payload does not match its kind.
	ErrInvalidPayload = errors.New("invalid notification payload")
)

// Kinds returns every supported notification kind.
func Kinds() []Kind {
	return []Kind{KindConfirmation, KindStatusUpdate, KindDeliveryNotice}
}

// Valid returns true if the Kind is one of the supported kinds.
func (k Kind) Valid() bool {
	return k == KindConfirmation || k == KindStatusUpdate || k == KindDeliveryNotice
}

// UnmarshalText implements encoding.TextUnmarshaler for Kind.
func (k *Kind) UnmarshalText(text []byte) error {
	v := Kind(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid notification kind: %q", string(text))
	}
	*k = v
	return nil
}

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	return s == JobStatusPending || s == JobStatusProcessing || s == JobStatusCompleted ||
		s == JobStatusFailed
}

// Job is one unit of outbound-message work.
type Job struct {
	ID          string     `json:"id"`
	Kind        Kind       `json:"kind"`
	Recipient   string     `json:"recipient"`
	StoreID     string     `json:"store_id"`
	OrderID     string     `json:"order_id"`
	Payload     Payload    `json:"payload"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// Terminal reports whether the job reached completed or failed.
func (j *Job) Terminal() bool {
	return j.ProcessedAt != nil || j.FailedAt != nil
}

// Status derives the stored state of the job. The engine reports processing
// separately because in-flight is not a property of the job record.
func (j *Job) Status() JobStatus {
	switch {
	case j.ProcessedAt != nil:
		return JobStatusCompleted
	case j.FailedAt != nil:
		return JobStatusFailed
	default:
		return JobStatusPending
	}
}

// Eligible reports whether the job may be dispatched at now.
func (j *Job) Eligible(now time.Time) bool {
	return !j.Terminal() && j.Attempts < j.MaxAttempts && !j.ScheduledAt.After(now)
}

// Clone returns a deep copy safe to hand outside the engine.
func (j *Job) Clone() Job {
	c := *j
	if j.ProcessedAt != nil {
		t := *j.ProcessedAt
		c.ProcessedAt = &t
	}
	if j.FailedAt != nil {
		t := *j.FailedAt
		c.FailedAt = &t
	}
	c.Payload = ClonePayload(j.Payload)
	return c
}

// EnqueueRequest describes a job to be created by the engine.
type EnqueueRequest struct {
	Recipient   string  `json:"recipient"`
	StoreID     string  `json:"store_id"`
	OrderID     string  `json:"order_id"`
	Payload     Payload `json:"payload"`
	MaxAttempts int     `json:"max_attempts,omitempty"`
}

// Validate validates the EnqueueRequest fields.
func (r *EnqueueRequest) Validate() error {
	if strings.TrimSpace(r.Recipient) == "" {
		return errors.New("recipient is required")
	}
	if strings.TrimSpace(r.StoreID) == "" {
		return errors.New("store id is required")
	}
	if strings.TrimSpace(r.OrderID) == "" {
		return errors.New("order id is required")
	}
	if r.Payload == nil {
		return errors.New("payload is required")
	}
	if !r.Payload.Kind().Valid() {
		return ErrInvalidPayload
	}
	if r.MaxAttempts < 0 {
		return errors.New("max attempts must be >= 0")
	}
	return nil
}

// JobStats represents live counts of jobs in each state.
type JobStats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}
