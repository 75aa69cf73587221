// Package redis provides a Redis-backed migration lock for deployments where
// the migrating processes share a Redis instance but not a database session.
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/strata/internal/lockutil"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces lock keys.
const DefaultPrefix = "strata:"

// unlockScript deletes the key only while it still holds our token.
var unlockScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// refreshScript extends the key's expiry only while it still holds our token.
var refreshScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`)

// Locker implements ports.LeaseLocker using Redis SET NX PX.
type Locker struct {
	client   backend.UniversalClient
	prefix   string
	interval time.Duration
}

var _ ports.LeaseLocker = (*Locker)(nil)

// NewLocker creates a new Redis locker. An empty prefix uses DefaultPrefix.
func NewLocker(client backend.UniversalClient, prefix string) *Locker {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Locker{
		client:   client,
		prefix:   prefix,
		interval: lockutil.DefaultInterval,
	}
}

// Dial connects to the Redis server at addr and returns a locker on it.
// addr may be a host:port pair or a redis:// URL.
func Dial(ctx context.Context, addr, prefix string) (*Locker, error) {
	opts, err := backend.ParseURL(addr)
	if err != nil {
		opts = &backend.Options{Addr: addr}
	}
	client := backend.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	return NewLocker(client, prefix), nil
}

// Key returns the Redis key that guards the given lock key.
func (l *Locker) Key(key string) string {
	return l.prefix + "lock:" + key
}

// Close closes the underlying Redis client.
func (l *Locker) Close() error {
	return l.client.Close()
}

// Lock acquires the lock for key. The value is a random token, so a holder
// whose lease expired cannot release a lock someone else now owns.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	unlock, _, err := l.LockLease(ctx, key, ttl)
	return unlock, err
}

// LockLease acquires the lock like Lock and also returns a func that pushes
// the expiry ttl into the future while the token is still ours.
func (l *Locker) LockLease(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, ports.RefreshFunc, error) {
	lockKey := l.Key(key)
	token := uuid.NewString()

	err := lockutil.Poll(ctx, l.interval, func(ctx context.Context) (bool, error) {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return false, fmt.Errorf("redis error acquiring lock %s: %w", key, err)
		}
		return ok, nil
	})
	if err != nil {
		return nil, nil, err
	}

	var once sync.Once
	var unlockErr error
	unlock := func(ctx context.Context) error {
		once.Do(func() {
			if err := unlockScript.Run(ctx, l.client, []string{lockKey}, token).Err(); err != nil {
				unlockErr = fmt.Errorf("redis error releasing lock %s: %w", key, err)
			}
		})
		return unlockErr
	}
	refresh := func(ctx context.Context) error {
		n, err := refreshScript.Run(ctx, l.client, []string{lockKey}, token, ttl.Milliseconds()).Int()
		if err != nil {
			return fmt.Errorf("redis error refreshing lock %s: %w", key, err)
		}
		if n == 0 {
			return fmt.Errorf("redis lock %s: %w", key, ports.ErrLockLost)
		}
		return nil
	}
	return unlock, refresh, nil
}
