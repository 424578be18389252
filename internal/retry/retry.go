package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Policy retries a failed operation a fixed number of times with a fixed
// delay between attempts. Every error is treated as retryable; the policy
// keeps no state between invocations and is safe for concurrent use.
type Policy struct {
	MaxAttempts int           // total attempts, including the first
	Delay       time.Duration // fixed wait between attempts
}

// Default mirrors the usual network-call configuration.
func Default() Policy {
	return Policy{MaxAttempts: 3, Delay: 2 * time.Second}
}

// Do runs op until it succeeds or the attempt budget is spent. The final
// error is returned wrapped with the attempt count. Waiting between attempts
// respects ctx cancellation.
func (p Policy) Do(ctx context.Context, name string, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			slog.Warn("retrying operation", "operation", name, "attempt", attempt, "max_attempts", attempts, "delay", p.Delay, "last_error", lastErr)
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: %w (after %d attempts)", name, ctx.Err(), attempt-1)
			case <-time.After(p.Delay):
			}
		}
		if lastErr = op(); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, p Policy, name string, op func() (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, name, func() error {
		var err error
		out, err = op()
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
