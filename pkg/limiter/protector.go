package limiter

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/snow-ghost/advisor/core"
	"github.com/snow-ghost/advisor/pkg/logging"
)

// Config holds the protection settings for the model backend path.
type Config struct {
	Retry RetryConfig

	// RateLimit is the sustained request rate toward the backend; zero
	// disables rate limiting.
	RateLimit rate.Limit
	RateBurst int

	// The breaker opens once at least five calls have been seen and half
	// of them failed; these fields tune its recovery windows.
	BreakerName        string
	BreakerMaxRequests uint32
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration
}

// DefaultConfig returns the default protection configuration.
func DefaultConfig(name string) Config {
	return Config{
		Retry:              DefaultRetryConfig(),
		RateLimit:          0,
		RateBurst:          1,
		BreakerName:        name,
		BreakerMaxRequests: 3,
		BreakerInterval:    10 * time.Second,
		BreakerTimeout:     30 * time.Second,
	}
}

// Protector wraps a model client with rate limiting, a circuit breaker and
// silent transport retries. Parse and schema failures never reach this
// layer; only transport failures consume the backoff budget here.
type Protector struct {
	inner   core.ModelClient
	retry   RetryConfig
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *logging.Logger
}

// Wrap builds a protected model client around inner.
func Wrap(inner core.ModelClient, cfg Config, logger *logging.Logger) *Protector {
	p := &Protector{
		inner:  inner,
		retry:  cfg.Retry,
		logger: logger,
	}
	if cfg.RateLimit > 0 {
		p.limiter = rate.NewLimiter(cfg.RateLimit, max(cfg.RateBurst, 1))
	}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.BreakerName,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.LogCircuitBreaker(name, from.String(), to.String())
			}
		},
	})
	return p
}

// Complete invokes the inner client, retrying transport failures with
// backoff. A completion (or content-level outcome) passes straight through.
func (p *Protector) Complete(ctx context.Context, turns []core.DialogTurn) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= p.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			if p.logger != nil {
				p.logger.LogRetry("", "transport", attempt, "")
			}
			if err := p.retry.Wait(ctx, attempt-1); err != nil {
				return "", err
			}
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		result, err := p.breaker.Execute(func() (any, error) {
			return p.inner.Complete(ctx, turns)
		})
		if err == nil {
			return result.(string), nil
		}

		// Breaker rejections behave like any other backend failure.
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			err = &core.TransportError{Err: err}
		}
		if !core.IsTransport(err) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

var _ core.ModelClient = (*Protector)(nil)
