package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/strata/internal/lockutil"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/google/uuid"
)

// lockFile is the content of a held lock file.
type lockFile struct {
	Owner    string    `json:"owner"`
	PID      int       `json:"pid"`
	Acquired time.Time `json:"acquired"`
	Expires  time.Time `json:"expires"`
}

// Lock acquires an exclusive lock file next to the snapshot ("<path>.<key>.lock").
// A lock file whose holder let it expire past ttl is taken over.
func (s *Store) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	unlock, _, err := s.LockLease(ctx, key, ttl)
	return unlock, err
}

// LockLease acquires the lock file like Lock. The refresh func rewrites the
// file with a later expiry while it is unexpired and still ours.
func (s *Store) LockLease(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, ports.RefreshFunc, error) {
	path := s.Path + "." + key + ".lock"
	owner := uuid.NewString()

	err := lockutil.Poll(ctx, lockutil.DefaultInterval, func(context.Context) (bool, error) {
		return tryLockFile(path, owner, ttl)
	})
	if err != nil {
		return nil, nil, err
	}

	unlock := func(ctx context.Context) error {
		held, err := readLockFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if held.Owner != owner {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove lock file: %w", err)
		}
		return nil
	}
	refresh := func(ctx context.Context) error {
		return refreshLockFile(path, owner, ttl)
	}
	return unlock, refresh, nil
}

func refreshLockFile(path, owner string, ttl time.Duration) error {
	held, err := readLockFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("lock file %s: %w", path, ports.ErrLockLost)
		}
		return err
	}
	now := time.Now()
	if held.Owner != owner || now.After(held.Expires) {
		return fmt.Errorf("lock file %s: %w", path, ports.ErrLockLost)
	}

	held.Expires = now.Add(ttl)
	data, err := json.Marshal(held)
	if err != nil {
		return err
	}
	tmp := path + ".refresh"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to refresh lock file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to refresh lock file: %w", err)
	}
	return nil
}

func tryLockFile(path, owner string, ttl time.Duration) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if !errors.Is(err, os.ErrExist) {
			return false, fmt.Errorf("failed to create lock file: %w", err)
		}
		held, readErr := readLockFile(path)
		if readErr == nil && time.Now().After(held.Expires) {
			// Expired holder; remove and retry on the next tick.
			_ = os.Remove(path)
		}
		return false, nil
	}
	defer f.Close()

	now := time.Now()
	data, err := json.Marshal(lockFile{
		Owner:    owner,
		PID:      os.Getpid(),
		Acquired: now,
		Expires:  now.Add(ttl),
	})
	if err != nil {
		return false, err
	}
	if _, err := f.Write(data); err != nil {
		_ = os.Remove(path)
		return false, fmt.Errorf("failed to write lock file: %w", err)
	}
	return true, nil
}

func readLockFile(path string) (*lockFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lf lockFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("corrupt lock file %s: %w", path, err)
	}
	return &lf, nil
}
