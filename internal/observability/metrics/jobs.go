// Package metrics holds the tag conventions for notification metrics.
package metrics

import (
	"time"

	obserrors "github.com/target/order-notify/internal/observability/errors"
	"github.com/target/order-notify/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Transition names for notification job lifecycle metrics.
const (
	TransitionEnqueued    = "enqueued"
	TransitionCompleted   = "completed"
	TransitionRescheduled = "rescheduled"
	TransitionFailed      = "failed"
	TransitionCancelled   = "cancelled"
	TransitionRetried     = "retried"
)

// JobMetric captures details about a notification lifecycle event for metric emission.
type JobMetric struct {
	Kind       string
	Transition string
	Result     string
	Duration   time.Duration
	Err        error
}

// EmitJobLifecycle emits standardised notification lifecycle metrics.
func EmitJobLifecycle(sink statsd.Sink, in JobMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"kind":       in.Kind,
		"transition": in.Transition,
		"result":     in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("notification.transition", 1, tags)

	if in.Duration > 0 {
		sink.Timing("notification.delivery_duration", in.Duration, CloneTags(tags))
	}
}

// TickMetric summarises one dispatch round.
type TickMetric struct {
	Claimed  int
	InFlight int
	Duration time.Duration
}

// EmitTick emits dispatch loop metrics.
func EmitTick(sink statsd.Sink, in TickMetric) {
	if sink == nil {
		return
	}

	result := ResultSuccess
	if in.Claimed == 0 {
		result = ResultNoop
	}
	sink.Count("dispatcher.tick", 1, map[string]string{"result": result})
	sink.Gauge("dispatcher.in_flight", float64(in.InFlight), nil)
	if in.Claimed > 0 {
		sink.Count("dispatcher.claimed", int64(in.Claimed), nil)
	}
	if in.Duration > 0 {
		sink.Timing("dispatcher.tick_duration", in.Duration, map[string]string{"result": result})
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
