package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
)

// heldLock is the migration lock for the duration of one run.
// Expiring locks are refreshed in the background until release.
type heldLock struct {
	engine  *Engine
	unlock  ports.UnlockFunc
	refresh ports.RefreshFunc

	stop chan struct{}
	done chan struct{}

	mu   sync.Mutex
	lost error
}

// lock acquires the migration lock according to the wait policy.
func (e *Engine) lock(ctx context.Context, store ports.Store) (*heldLock, error) {
	locker := e.locker
	if locker == nil {
		l, ok := store.(ports.DistributedLocker)
		if !ok {
			return nil, ErrNoLocker
		}
		locker = l
	}

	waitCtx := ctx
	if wait := e.wait.Wait(); wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, wait)
		defer cancel()
	}

	e.logger.Debug("acquiring migration lock", "key", e.lockKey, "block", e.wait.Block)
	h := &heldLock{engine: e}
	var err error
	if lease, ok := locker.(ports.LeaseLocker); ok {
		h.unlock, h.refresh, err = lease.LockLease(waitCtx, e.lockKey, e.lockTTL)
	} else {
		h.unlock, err = locker.Lock(waitCtx, e.lockKey, e.lockTTL)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, &domain.MigrationInProgressError{Key: e.lockKey, Cause: err}
		}
		return nil, fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	if h.refresh != nil {
		h.stop = make(chan struct{})
		h.done = make(chan struct{})
		go h.keepAlive(context.WithoutCancel(ctx), e.refreshInterval())
	}
	return h, nil
}

// refreshInterval renews the lease three times per ttl.
func (e *Engine) refreshInterval() time.Duration {
	if e.lockRefresh > 0 {
		return e.lockRefresh
	}
	return max(e.lockTTL/3, time.Millisecond)
}

func (h *heldLock) keepAlive(ctx context.Context, every time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			if err := h.renew(ctx); err != nil {
				return
			}
		}
	}
}

// renew extends the lease and remembers the first failure.
func (h *heldLock) renew(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.lost != nil {
		return h.lost
	}
	if err := h.refresh(ctx); err != nil {
		h.lost = err
		h.engine.logger.Warn("migration lock lease lost", "key", h.engine.lockKey, "err", err)
		return err
	}
	return nil
}

// check confirms the lock is still held before a step starts.
func (h *heldLock) check(ctx context.Context) error {
	if h.refresh == nil {
		return nil
	}
	if err := h.renew(context.WithoutCancel(ctx)); err != nil {
		return &domain.MigrationInProgressError{Key: h.engine.lockKey, Cause: err}
	}
	return nil
}

// release stops the refresh loop and unlocks. Release errors are logged.
func (h *heldLock) release(ctx context.Context) {
	if h.stop != nil {
		close(h.stop)
		<-h.done
	}
	if err := h.unlock(context.WithoutCancel(ctx)); err != nil {
		h.engine.logger.Warn("failed to release migration lock", "key", h.engine.lockKey, "err", err)
	}
}
