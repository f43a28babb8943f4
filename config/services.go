package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server (producer hooks and inspection API).
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeDispatcher runs the notification dispatch loop.
	ServiceModeDispatcher ServiceMode = "dispatcher"
	// ServiceModeReaper runs periodic cleanup of terminal notification jobs.
	ServiceModeReaper ServiceMode = "reaper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeHTTP,
		ServiceModeDispatcher,
		ServiceModeReaper,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeDispatcher, ServiceModeReaper:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: http, dispatcher, reaper)",
				serviceName,
			)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// DispatcherConfig contains notification queue engine configuration.
type DispatcherConfig struct {
	// Interval is the dispatch tick interval.
	Interval time.Duration `env:"QUEUE_INTERVAL" envDefault:"1500ms"`

	// MaxConcurrent caps the number of simultaneous in-flight deliveries.
	MaxConcurrent int `env:"QUEUE_MAX_CONCURRENT" envDefault:"3"`

	// MaxAttempts is the attempt ceiling applied to jobs that do not set their own.
	MaxAttempts int `env:"QUEUE_MAX_ATTEMPTS" envDefault:"3"`

	// BackoffBase is the delay unit for exponential retry scheduling.
	BackoffBase time.Duration `env:"QUEUE_BACKOFF_BASE" envDefault:"1s"`

	// BackoffMax caps the retry delay.
	BackoffMax time.Duration `env:"QUEUE_BACKOFF_MAX" envDefault:"60s"`
}

// Sanitize applies guardrails to dispatcher configuration values.
func (d *DispatcherConfig) Sanitize() {
	if d.Interval < 100*time.Millisecond {
		d.Interval = 100 * time.Millisecond
	}
	if d.MaxConcurrent < 1 {
		d.MaxConcurrent = 1
	}
	if d.MaxAttempts < 1 {
		d.MaxAttempts = 1
	}
	if d.BackoffBase <= 0 {
		d.BackoffBase = time.Second
	}
	if d.BackoffMax < d.BackoffBase {
		d.BackoffMax = d.BackoffBase
	}
}

// ReaperConfig contains notification job reaper configuration.
type ReaperConfig struct {
	// Interval is the reaper tick interval.
	Interval time.Duration `env:"REAPER_INTERVAL" envDefault:"1h"`

	// MaxAge is how long completed or failed jobs are kept, measured from creation.
	MaxAge time.Duration `env:"REAPER_MAX_AGE" envDefault:"24h"`
}

// Sanitize applies guardrails to reaper configuration values.
func (r *ReaperConfig) Sanitize() {
	if r.Interval < time.Minute {
		r.Interval = time.Minute
	}
	if r.MaxAge < time.Hour {
		r.MaxAge = time.Hour
	}
}
