// Package limiter protects the model backend path: bounded transport
// retries with backoff, a circuit breaker, and a request rate limit.
package limiter

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig bounds the transport retry loop.
type RetryConfig struct {
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	Jitter        bool
}

// DefaultRetryConfig returns the default transport retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		BaseDelay:     200 * time.Millisecond,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

// Backoff computes the delay before the given zero-based attempt.
func (c RetryConfig) Backoff(attempt int) time.Duration {
	delay := float64(c.BaseDelay) * math.Pow(c.BackoffFactor, float64(attempt))
	if delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}
	if c.Jitter {
		delay *= 1 + (rand.Float64()*0.5 - 0.25)
	}
	return time.Duration(delay)
}

// Wait sleeps for the attempt's backoff, honoring context cancellation.
func (c RetryConfig) Wait(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.Backoff(attempt)):
		return nil
	}
}
