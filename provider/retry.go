// ABOUTME: Exponential backoff with jitter for per-image provider calls.
// ABOUTME: Respects error retryability and server Retry-After hints; context cancels waits.
package provider

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryPolicy configures retry behavior for a single image description call.
type RetryPolicy struct {
	// MaxRetries is the number of retry attempts after the initial call.
	MaxRetries int

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the backoff between attempts.
	MaxDelay time.Duration

	// BackoffMultiplier controls exponential growth of the delay.
	BackoffMultiplier float64

	// Jitter randomizes each delay between zero and the computed backoff.
	Jitter bool

	// OnRetry, when set, is invoked before sleeping for each retry.
	OnRetry func(err error, attempt int, delay time.Duration)
}

// DefaultRetryPolicy suits per-image calls: 3 retries, 1s base, 30s cap,
// doubling with full jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        3,
		BaseDelay:         time.Second,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            true,
	}
}

// CalculateDelay computes the backoff for the given attempt, capped at
// MaxDelay. With Jitter the result is uniform in [0, backoff].
func (p RetryPolicy) CalculateDelay(attempt int) time.Duration {
	d := float64(p.BaseDelay) * math.Pow(p.BackoffMultiplier, float64(attempt))
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	delay := time.Duration(d)
	if p.Jitter && delay > 0 {
		delay = time.Duration(rand.Int64N(int64(delay) + 1))
	}
	return delay
}

// ShouldRetry reports whether the error warrants another attempt.
func (p RetryPolicy) ShouldRetry(err error, attempt int) bool {
	if err == nil || attempt >= p.MaxRetries {
		return false
	}
	return IsRetryable(err)
}

// Retry runs fn until it succeeds, returns a non-retryable error, or the
// policy is exhausted. A Retry-After hint on the error raises the delay floor.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !policy.ShouldRetry(lastErr, attempt) {
			return lastErr
		}

		delay := policy.CalculateDelay(attempt)
		if hint := retryAfterHint(lastErr); hint > delay {
			delay = hint
		}
		if policy.OnRetry != nil {
			policy.OnRetry(lastErr, attempt, delay)
		}

		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay):
		}
	}
}

// retryAfterHint extracts the server-suggested wait from the error chain.
func retryAfterHint(err error) time.Duration {
	var pe *ProviderError
	if errors.As(err, &pe) && pe.RetryAfter != nil {
		return time.Duration(*pe.RetryAfter * float64(time.Second))
	}
	return 0
}
