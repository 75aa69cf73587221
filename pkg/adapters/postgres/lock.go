package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/strata/internal/lockutil"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Lock takes a session-level advisory lock on a dedicated connection.
// The lock lives as long as that connection, so a crashed holder releases it
// when the server drops the session; ttl is ignored.
func (s *Store) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockID := hashLockKey(key)

	var conn *pgxpool.Conn
	err := lockutil.Poll(ctx, lockutil.DefaultInterval, func(ctx context.Context) (bool, error) {
		c, err := s.pool.Acquire(ctx)
		if err != nil {
			return false, fmt.Errorf("acquire lock connection for %s: %w", key, err)
		}
		var acquired bool
		if err := c.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired); err != nil {
			c.Release()
			return false, fmt.Errorf("try acquire lock for %s: %w", key, err)
		}
		if !acquired {
			c.Release()
			return false, nil
		}
		conn = c
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	var once sync.Once
	var unlockErr error
	return func(ctx context.Context) error {
		once.Do(func() {
			defer conn.Release()
			if _, err := conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, lockID); err != nil {
				unlockErr = fmt.Errorf("release lock for %s: %w", key, err)
			}
		})
		return unlockErr
	}, nil
}

// hashLockKey produces a stable int64 hash from a string key for use with
// pg_advisory_lock. Uses FNV-1a.
func hashLockKey(key string) int64 {
	var h uint64 = 14695981039346656037 // FNV offset basis
	for i := 0; i < len(key); i++ {
		h ^= uint64(key[i])
		h *= 1099511628211 // FNV prime
	}
	return int64(h & 0x7FFFFFFFFFFFFFFF) //nolint:gosec // intentional truncation for advisory lock key
}
