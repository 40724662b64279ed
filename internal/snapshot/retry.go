package snapshot

import (
	"context"
	"time"
)

// withRetry calls fn until it succeeds, doubling the delay after each
// failure. It gives up after maxRetries retries or when ctx is done.
func withRetry[T any](ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}
		if attempt >= maxRetries {
			var zero T
			return zero, err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			var zero T
			return zero, ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}
