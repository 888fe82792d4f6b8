package summarize

import (
	"context"
	"time"

	"github.com/akolanti/lexintake/internal/llm"
)

// RetryPolicy governs repeated LLM attempts. Backoff gets the zero-based
// attempt number that just failed.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	Retryable   func(error) bool
}

func DefaultRetryPolicy(maxAttempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(attempt+1) * 2 * time.Second
		},
		Retryable: llm.IsTransient,
	}
}

// withRetry runs fn up to MaxAttempts times, sleeping between attempts when
// the failure is retryable. Context cancellation cuts the wait short.
func withRetry[T any](ctx context.Context, policy RetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !policy.Retryable(err) || attempt == policy.MaxAttempts-1 {
			break
		}

		select {
		case <-time.After(policy.Backoff(attempt)):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	return zero, lastErr
}
