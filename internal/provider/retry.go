package provider

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// retryPolicy is the single retry policy applied around every remote call,
// parameterized only by the attempt budget.
type retryPolicy struct {
	maxRetries int
	delay      time.Duration
	maxDelay   time.Duration
}

func (c *Config) translatePolicy() retryPolicy {
	return retryPolicy{maxRetries: c.MaxRetries, delay: c.RetryDelay, maxDelay: c.MaxRetryDelay}
}

// Term extraction is cheap relative to a lost chapter, so it gets two extra
// attempts.
func (c *Config) termsPolicy() retryPolicy {
	return retryPolicy{maxRetries: c.MaxRetries + 2, delay: c.RetryDelay, maxDelay: c.MaxRetryDelay}
}

// withRetry runs fn until it succeeds, fails permanently, or exhausts the
// budget. Between attempts it sleeps with exponential backoff capped at
// maxDelay, plus up to 20% jitter so parallel workers don't retry in step.
func withRetry(ctx context.Context, policy retryPolicy, fn func(context.Context) (string, error)) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= policy.maxRetries; attempt++ {
		if attempt > 0 {
			sleep := policy.delay << (attempt - 1)
			if sleep > policy.maxDelay {
				sleep = policy.maxDelay
			}
			sleep += time.Duration(rand.Float64() * 0.2 * float64(sleep))
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrTransient, ctx.Err())
			case <-time.After(sleep):
			}
		}

		text, err := fn(ctx)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if errors.Is(err, ErrPermanent) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrTransient, ctx.Err())
		}
	}

	return "", fmt.Errorf("giving up after %d attempts: %w", policy.maxRetries+1, lastErr)
}
