// Package job holds scheduling policy for notification jobs.
package job

import (
	"errors"
	"time"
)

// ErrInvalidBackoff indicates the configured backoff bounds are not usable.
var ErrInvalidBackoff = errors.New("backoff base and max must be positive and max >= base")

const (
	// DefaultBackoffBase is the delay unit for the first retry.
	DefaultBackoffBase = time.Second
	// DefaultBackoffMax caps any single retry delay.
	DefaultBackoffMax = 60 * time.Second
)

// BackoffPolicy computes retry delays as min(base * 2^attempts, max).
type BackoffPolicy struct {
	base time.Duration
	max  time.Duration
}

// NewBackoffPolicy constructs a BackoffPolicy with the given bounds.
func NewBackoffPolicy(base, maxDelay time.Duration) (*BackoffPolicy, error) {
	if base <= 0 || maxDelay <= 0 || maxDelay < base {
		return nil, ErrInvalidBackoff
	}
	return &BackoffPolicy{base: base, max: maxDelay}, nil
}

// DefaultBackoffPolicy returns the 1s..60s policy.
func DefaultBackoffPolicy() *BackoffPolicy {
	return &BackoffPolicy{base: DefaultBackoffBase, max: DefaultBackoffMax}
}

// Delay returns the wait before the next attempt after attempts failures.
// Attempts of 1, 2, 3 yield 2s, 4s, 8s with the default policy.
func (p *BackoffPolicy) Delay(attempts int) time.Duration {
	if p == nil {
		return DefaultBackoffPolicy().Delay(attempts)
	}
	if attempts < 0 {
		attempts = 0
	}

	d := p.base
	for range attempts {
		if d > p.max/2 {
			return p.max
		}
		d *= 2
	}
	if d > p.max {
		return p.max
	}
	return d
}

// Max returns the delay ceiling.
func (p *BackoffPolicy) Max() time.Duration {
	if p == nil {
		return DefaultBackoffMax
	}
	return p.max
}
