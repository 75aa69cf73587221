package ports

import (
	"context"
	"errors"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for cross-process mutual exclusion.
// Stores implement it with their native primitive (advisory lock, lock row, lock file);
// a Redis locker can be injected for cross-host coordination instead.
type DistributedLocker interface {
	// Lock attempts to acquire the exclusive lock for the given key.
	// It blocks until the lock is acquired or the context is done, in which case
	// the context error is returned. The ttl bounds how long a crashed holder can
	// keep the lock on backends that support expiry; others ignore it.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// ErrLockLost is returned by a RefreshFunc once the lock is no longer held by its caller.
var ErrLockLost = errors.New("lock lost")

// RefreshFunc extends a held lock by its ttl.
type RefreshFunc func(ctx context.Context) error

// LeaseLocker is implemented by lockers whose locks expire after the ttl.
// Holders of long runs keep the lease alive through the RefreshFunc, which
// fails with ErrLockLost once the lease expired or another holder owns it.
type LeaseLocker interface {
	DistributedLocker
	LockLease(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, RefreshFunc, error)
}
