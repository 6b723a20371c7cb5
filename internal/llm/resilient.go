package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/felixgeelhaar/fortify/retry"
)

// ResilientProvider wraps a provider with circuit breaking, retry,
// concurrency limiting and rate limiting. The interview flow keeps moving
// when a provider is down, so a fast, bounded failure here is worth more
// than a long wait.
type ResilientProvider struct {
	provider Provider
	breaker  circuitbreaker.CircuitBreaker[*Response]
	retrier  retry.Retry[*Response]
	bulkhead bulkhead.Bulkhead[*Response]
	limiter  ratelimit.RateLimiter
	logger   *slog.Logger
	name     string
}

// ResilientConfig holds configuration for the resilience wrapper
type ResilientConfig struct {
	// MaxConcurrent bounds in-flight completions (default: 4)
	MaxConcurrent int

	// RatePerSecond bounds request rate (default: 2)
	RatePerSecond int

	// MaxAttempts bounds retries per completion (default: 3)
	MaxAttempts int

	// Logger for resilience events
	Logger *slog.Logger
}

// NewResilientProvider wraps a provider with the fortify resilience stack
func NewResilientProvider(provider Provider, cfg ResilientConfig) *ResilientProvider {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 2
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}

	rp := &ResilientProvider{
		provider: provider,
		logger:   cfg.Logger,
		name:     provider.Name(),
	}

	rp.breaker = circuitbreaker.New[*Response](circuitbreaker.Config{
		MaxRequests: 2,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			if rp.logger != nil {
				rp.logger.Warn("circuit breaker state change",
					"provider", rp.name,
					"from", from.String(),
					"to", to.String())
			}
		},
	})

	rp.retrier = retry.New[*Response](retry.Config{
		MaxAttempts:   cfg.MaxAttempts,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable:   isRetryableHTTPError,
	})

	rp.bulkhead = bulkhead.New[*Response](bulkhead.Config{
		MaxConcurrent: cfg.MaxConcurrent,
		MaxQueue:      cfg.MaxConcurrent * 2,
		QueueTimeout:  30 * time.Second,
	})

	rp.limiter = ratelimit.New(&ratelimit.Config{
		Rate:     cfg.RatePerSecond,
		Burst:    cfg.RatePerSecond * 3,
		Interval: time.Second,
	})

	return rp
}

func (p *ResilientProvider) Name() string {
	return p.provider.Name()
}

func (p *ResilientProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	if !p.limiter.Allow(ctx, p.name) {
		return nil, fmt.Errorf("rate limit exceeded for provider %s", p.name)
	}

	return p.breaker.Execute(ctx, func(ctx context.Context) (*Response, error) {
		return p.retrier.Do(ctx, func(ctx context.Context) (*Response, error) {
			return p.bulkhead.Execute(ctx, func(ctx context.Context) (*Response, error) {
				return p.provider.Complete(ctx, req)
			})
		})
	})
}

// Close releases limiter resources
func (p *ResilientProvider) Close() error {
	return p.limiter.Close()
}

// isRetryableHTTPError reports whether the failure is a transient API error.
// Providers surface upstream failures as "API error (status NNN)" strings.
func isRetryableHTTPError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	for _, code := range []int{
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	} {
		if strings.Contains(msg, fmt.Sprintf("status %d", code)) {
			return true
		}
	}
	return false
}
