package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aretw0/strata/internal/lockutil"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/aretw0/strata/pkg/schema"
)

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("transaction already finished")

// Store implements ports.Store and ports.DistributedLocker in memory.
// Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	catalog *schema.Catalog
	marker  string

	lockMu sync.Mutex
	held   map[string]bool
}

var (
	_ ports.Store             = (*Store)(nil)
	_ ports.DistributedLocker = (*Store)(nil)
)

// NewStore creates a new, unmigrated in-memory store.
func NewStore() *Store {
	return &Store{
		catalog: schema.New(),
		held:    make(map[string]bool),
	}
}

// ReadMarker returns the committed marker.
func (s *Store) ReadMarker(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marker, nil
}

// Schema returns a copy of the committed schema.
func (s *Store) Schema() *schema.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Clone()
}

// Begin starts a transaction working on a private copy of the schema.
func (s *Store) Begin(ctx context.Context) (ports.Tx, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Tx{
		Catalog: s.catalog.Clone(),
		store:   s,
		marker:  s.marker,
	}, nil
}

// Lock acquires the named in-process lock. The ttl is ignored.
func (s *Store) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	err := lockutil.Poll(ctx, 10*time.Millisecond, func(context.Context) (bool, error) {
		s.lockMu.Lock()
		defer s.lockMu.Unlock()
		if s.held[key] {
			return false, nil
		}
		s.held[key] = true
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() {
			s.lockMu.Lock()
			delete(s.held, key)
			s.lockMu.Unlock()
		})
		return nil
	}, nil
}

// Tx is an in-memory transaction. Schema changes apply to the embedded
// catalog copy and replace the store's schema on Commit.
type Tx struct {
	*schema.Catalog
	store  *Store
	marker string
	done   bool
}

// WriteMarker stages the marker.
func (t *Tx) WriteMarker(ctx context.Context, id string) error {
	if t.done {
		return ErrTxDone
	}
	t.marker = id
	return nil
}

// Commit publishes the staged schema and marker.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.catalog = t.Catalog
	t.store.marker = t.marker
	return nil
}

// Rollback discards the transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	t.done = true
	return nil
}
