// Package retry provides a bounded retry policy for network calls,
// keeping attempt/backoff decisions out of the business logic.
package retry

import (
	"context"
	"time"
)

// Policy retries an operation a fixed number of times with a fixed
// delay between attempts.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Do runs fn until it succeeds, the attempts are exhausted, or the
// context is done. The last error is returned on exhaustion.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}

		if i < attempts-1 && p.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Delay):
			}
		}
	}
	return lastErr
}
