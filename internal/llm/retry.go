package llm

import (
	"context"
	"time"
)

// retryBaseDelay is the first backoff interval; it doubles per attempt
const retryBaseDelay = 500 * time.Millisecond

// withRetry runs fn up to retries+1 times, backing off exponentially between
// attempts. Only transient failures are retried; a permanent failure or a
// canceled context returns immediately.
func withRetry(ctx context.Context, retries int, fn func(ctx context.Context) error) error {
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	delay := retryBaseDelay
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Transient(ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
