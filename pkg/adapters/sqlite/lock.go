package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/strata/internal/lockutil"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/google/uuid"
)

// Lock claims a row in LockTable. Rows whose holder let them expire past
// ttl are reclaimed by the next caller.
func (s *Store) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	unlock, _, err := s.LockLease(ctx, key, ttl)
	return unlock, err
}

// LockLease claims the lock row like Lock. The refresh func moves the row's
// expiry ttl ahead as long as the row is unexpired and still ours.
func (s *Store) LockLease(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, ports.RefreshFunc, error) {
	if ttl <= 0 {
		ttl = domain.DefaultLockTTL
	}
	owner := uuid.NewString()

	err := lockutil.Poll(ctx, lockutil.DefaultInterval, func(ctx context.Context) (bool, error) {
		return s.tryLock(ctx, key, owner, ttl)
	})
	if err != nil {
		return nil, nil, err
	}

	unlock := func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM `+LockTable+` WHERE lock_key = ? AND owner = ?`, key, owner)
		if err != nil {
			return fmt.Errorf("release sqlite lock %s: %w", key, err)
		}
		return nil
	}
	refresh := func(ctx context.Context) error {
		now := time.Now()
		res, err := s.db.ExecContext(ctx,
			`UPDATE `+LockTable+` SET expires_at = ? WHERE lock_key = ? AND owner = ? AND expires_at >= ?`,
			now.Add(ttl).UnixMilli(), key, owner, now.UnixMilli())
		if err != nil {
			return fmt.Errorf("refresh sqlite lock %s: %w", key, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("refresh sqlite lock %s: %w", key, err)
		}
		if n == 0 {
			return fmt.Errorf("sqlite lock %s: %w", key, ports.ErrLockLost)
		}
		return nil
	}
	return unlock, refresh, nil
}

func (s *Store) tryLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("acquire sqlite lock %s: %w", key, err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+LockTable+` WHERE lock_key = ? AND expires_at < ?`, key, now.UnixMilli()); err != nil {
		return false, fmt.Errorf("acquire sqlite lock %s: %w", key, err)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO `+LockTable+` (lock_key, owner, expires_at) VALUES (?, ?, ?)`,
		key, owner, now.Add(ttl).UnixMilli())
	if err != nil {
		return false, fmt.Errorf("acquire sqlite lock %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("acquire sqlite lock %s: %w", key, err)
	}
	return n == 1, nil
}
