// Package lockutil holds the polling loop shared by the lock adapters.
package lockutil

import (
	"context"
	"time"
)

// DefaultInterval is the pause between two acquisition attempts.
const DefaultInterval = 100 * time.Millisecond

// TryFunc makes one non-blocking acquisition attempt.
// It reports false when the lock is held elsewhere.
type TryFunc func(ctx context.Context) (bool, error)

// Poll calls try until it acquires the lock, fails, or ctx is done.
// The first attempt is immediate. When ctx ends first, ctx.Err() is returned.
func Poll(ctx context.Context, interval time.Duration, try TryFunc) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := try(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
