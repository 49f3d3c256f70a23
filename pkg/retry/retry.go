// Package retry provides the bounded-retry combinator used for every
// external call that is allowed a second attempt. Policy lives here once
// instead of being re-written at each call site.
package retry

import (
	"context"
	"time"
)

// Policy configures a bounded retry loop
type Policy struct {
	// MaxAttempts is the total number of calls, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// Backoff is the delay before the first retry; 0 retries immediately.
	Backoff time.Duration

	// Multiplier scales the backoff after each failed attempt. Values
	// below 1 leave the backoff constant.
	Multiplier float64

	// RetryIf decides whether an error is worth another attempt.
	// Nil means every error is retryable.
	RetryIf func(error) bool
}

// Do runs fn until it succeeds, the policy is exhausted, or the context is
// cancelled. The last error is returned unwrapped so callers can classify it.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	backoff := p.Backoff
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if p.RetryIf != nil && !p.RetryIf(lastErr) {
			return lastErr
		}

		if attempt == attempts {
			break
		}

		if backoff > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if p.Multiplier > 1 {
				backoff = time.Duration(float64(backoff) * p.Multiplier)
			}
		}
	}

	return lastErr
}

// DoValue is Do for functions that return a value alongside the error
func DoValue[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, p, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = fn(ctx)
		return innerErr
	})
	return result, err
}
