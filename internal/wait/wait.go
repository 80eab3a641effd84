package wait

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned when a postcondition is not observed within its budget
var ErrTimeout = errors.New("timed out waiting for condition")

// DefaultInterval is used when Until is given a non-positive poll interval
const DefaultInterval = 200 * time.Millisecond

// Condition reports whether the awaited state has been reached.
// An error is treated as "not yet" and the condition is polled again.
type Condition func(ctx context.Context) (bool, error)

// Until polls cond every interval until it holds, the timeout elapses or ctx is done.
// A non-positive timeout relies on ctx alone. On timeout the last condition error,
// if any, is attached to ErrTimeout.
func Until(ctx context.Context, interval, timeout time.Duration, cond Condition) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		ok, err := cond(ctx)
		if err == nil && ok {
			return nil
		}
		if err != nil {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err := ErrTimeout
				if timeout > 0 {
					err = fmt.Errorf("%w after %s", ErrTimeout, timeout)
				}
				if lastErr != nil {
					return fmt.Errorf("%w: %v", err, lastErr)
				}
				return err
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
