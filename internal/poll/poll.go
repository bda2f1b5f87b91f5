// Package poll implements bounded fixed-interval polling: wait, attempt,
// repeat until the attempt reports done, errors, or the budget runs out.
package poll

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted is returned when the attempt budget runs out without a
// terminal result.
var ErrExhausted = errors.New("poll: attempt budget exhausted")

// Func performs a single attempt. done stops the loop with success. A
// non-nil error aborts the whole sequence immediately; transient failures
// are not retried.
type Func func(ctx context.Context) (done bool, err error)

// Config bounds a polling sequence.
type Config struct {
	// Interval is the fixed delay before every attempt, including the
	// first one.
	Interval time.Duration
	// MaxAttempts caps the number of attempts before ErrExhausted.
	MaxAttempts int
	// Sleep overrides the delay mechanism; tests inject a no-op. Nil means
	// a real timer honoring ctx cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Until runs fn at the configured cadence until it reports done, fails, the
// context is cancelled, or MaxAttempts is reached. It returns the number of
// attempts performed alongside the terminal error, if any.
func Until(ctx context.Context, cfg Config, fn Func) (int, error) {
	if cfg.MaxAttempts <= 0 {
		return 0, errors.New("poll: max attempts must be positive")
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	attempts := 0
	for {
		if err := sleep(ctx, cfg.Interval); err != nil {
			return attempts, err
		}
		attempts++
		done, err := fn(ctx)
		if err != nil {
			return attempts, err
		}
		if done {
			return attempts, nil
		}
		if attempts >= cfg.MaxAttempts {
			return attempts, ErrExhausted
		}
	}
}
