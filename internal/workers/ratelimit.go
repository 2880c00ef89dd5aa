package workers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Epistemic-Technology/pdf-tools/internal/logger"
)

const (
	defaultMaxRetries = 3
	baseRetryDelay    = 500 * time.Millisecond
	maxRetryDelay     = 8 * time.Second
)

// Limiter shares a request budget between all remote fetches
type Limiter struct {
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewLimiter allows perSecond requests on average with bursts of burst
func NewLimiter(perSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &Limiter{
		limiter:    rate.NewLimiter(limit, burst),
		maxRetries: defaultMaxRetries,
		baseDelay:  baseRetryDelay,
		maxDelay:   maxRetryDelay,
	}
}

// WithRetries returns a copy sharing the same budget with a different retry policy
func (l *Limiter) WithRetries(maxRetries int, baseDelay time.Duration) *Limiter {
	c := *l
	c.maxRetries = maxRetries
	c.baseDelay = baseDelay
	return &c
}

// RetryableError marks an error as transient
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// RateLimitedCall waits for the limiter before calling fn and retries
// transient failures with exponential backoff.
func RateLimitedCall[T any](ctx context.Context, l *Limiter, log logger.Logger, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if err := l.limiter.Wait(ctx); err != nil {
		return zero, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= l.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(l.baseDelay) * math.Pow(2, float64(attempt-1)))
			if delay > l.maxDelay {
				delay = l.maxDelay
			}

			log.Info("Retry attempt %d/%d after %v delay", attempt, l.maxRetries, delay)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				log.Info("Retry succeeded on attempt %d", attempt)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryable(err) {
			return zero, err
		}

		log.Warn("Transient error on attempt %d/%d: %v", attempt+1, l.maxRetries+1, err)
	}

	return zero, fmt.Errorf("max retries (%d) exceeded, last error: %w", l.maxRetries, lastErr)
}

// isRetryable reports whether err is marked retryable or looks like a
// throttling or gateway response
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var re *RetryableError
	if errors.As(err, &re) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{"429", "Too Many Requests", "rate limit", "503", "Service Unavailable"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
