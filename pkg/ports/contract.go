package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contractTable is the table every store contract run creates.
func contractTable() domain.Table {
	return domain.Table{
		Name: "contract_run",
		Columns: []domain.Column{
			{Name: "id", Type: domain.TypeInteger, PrimaryKey: true, AutoIncrement: true},
			{Name: "name", Type: domain.TypeText, Nullable: true},
		},
	}
}

// RunStoreContract runs a suite of tests to verify that a Store implementation
// adheres to the defined interface contract. newStore must return a fresh,
// unmigrated store on every call.
func RunStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("Unmigrated Marker", func(t *testing.T) {
		store := newStore(t)
		marker, err := store.ReadMarker(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.BaseRevision, marker)
	})

	t.Run("Commit Persists Schema And Marker", func(t *testing.T) {
		store := newStore(t)

		tx, err := store.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.CreateTable(ctx, contractTable()))
		require.NoError(t, tx.WriteMarker(ctx, "r1"))
		require.NoError(t, tx.Commit(ctx))
		assert.NoError(t, tx.Rollback(ctx), "Rollback after Commit should be a no-op")

		marker, err := store.ReadMarker(ctx)
		require.NoError(t, err)
		assert.Equal(t, "r1", marker)

		// The table exists now, so creating it again must fail.
		tx, err = store.Begin(ctx)
		require.NoError(t, err)
		assert.Error(t, tx.CreateTable(ctx, contractTable()))
		require.NoError(t, tx.Rollback(ctx))
	})

	t.Run("Rollback Discards Schema And Marker", func(t *testing.T) {
		store := newStore(t)

		tx, err := store.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.CreateTable(ctx, contractTable()))
		require.NoError(t, tx.WriteMarker(ctx, "r1"))
		require.NoError(t, tx.Rollback(ctx))

		marker, err := store.ReadMarker(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.BaseRevision, marker)

		// The table was never created, so creating it must succeed.
		tx, err = store.Begin(ctx)
		require.NoError(t, err)
		assert.NoError(t, tx.CreateTable(ctx, contractTable()))
		require.NoError(t, tx.Rollback(ctx))
	})

	t.Run("Schema Operations", func(t *testing.T) {
		store := newStore(t)

		tx, err := store.Begin(ctx)
		require.NoError(t, err)
		defer func() { _ = tx.Rollback(ctx) }()

		require.NoError(t, tx.CreateTable(ctx, contractTable()))
		require.NoError(t, tx.CreateTable(ctx, domain.Table{
			Name: "contract_note",
			Columns: []domain.Column{
				{Name: "id", Type: domain.TypeInteger, PrimaryKey: true, AutoIncrement: true},
			},
		}))
		require.NoError(t, tx.AddColumn(ctx, "contract_note", domain.Column{Name: "run_id", Type: domain.TypeInteger, Nullable: true}))
		require.NoError(t, tx.AddForeignKey(ctx, "contract_note", domain.ForeignKey{
			Name: "fk_contract_note_run", Columns: []string{"run_id"},
			RefTable: "contract_run", RefColumns: []string{"id"},
		}))
		require.NoError(t, tx.DropConstraint(ctx, "contract_note", "fk_contract_note_run"))
		require.NoError(t, tx.DropColumn(ctx, "contract_note", "run_id"))
		require.NoError(t, tx.DropTable(ctx, "contract_note"))

		assert.Error(t, tx.DropTable(ctx, "contract_missing"), "dropping an unknown table should fail")
		require.NoError(t, tx.WriteMarker(ctx, "r1"))
		require.NoError(t, tx.Commit(ctx))

		marker, err := store.ReadMarker(ctx)
		require.NoError(t, err)
		assert.Equal(t, "r1", marker)
	})

	t.Run("Marker Can Return To Base", func(t *testing.T) {
		store := newStore(t)

		for _, id := range []string{"r1", domain.BaseRevision} {
			tx, err := store.Begin(ctx)
			require.NoError(t, err)
			require.NoError(t, tx.WriteMarker(ctx, id))
			require.NoError(t, tx.Commit(ctx))
		}

		marker, err := store.ReadMarker(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.BaseRevision, marker)
	})
}

// RunLockerContract verifies that a DistributedLocker provides mutual exclusion.
// Both lockers must contend for the same underlying resource.
func RunLockerContract(t *testing.T, first, second DistributedLocker) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("20060102150405.000")

	t.Run("Lock And Unlock", func(t *testing.T) {
		unlock, err := first.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		require.NotNil(t, unlock)
		require.NoError(t, unlock(ctx))
	})

	t.Run("Contention", func(t *testing.T) {
		unlock, err := first.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)

		ctxTimeout, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()

		_, err = second.Lock(ctxTimeout, key, 5*time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded, "second holder must wait until the deadline")

		require.NoError(t, unlock(ctx))

		unlock2, err := second.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err, "lock must be available after release")
		require.NoError(t, unlock2(ctx))
	})

	t.Run("Independent Keys", func(t *testing.T) {
		unlockA, err := first.Lock(ctx, key+"-a", 5*time.Second)
		require.NoError(t, err)
		defer func() { _ = unlockA(ctx) }()

		ctxTimeout, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		unlockB, err := second.Lock(ctxTimeout, key+"-b", 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, unlockB(ctx))
	})
}

// RunLeaseContract verifies that refreshing a LeaseLocker's lock keeps it
// past its ttl and that refresh reports ErrLockLost after release.
func RunLeaseContract(t *testing.T, first, second LeaseLocker) {
	ctx := context.Background()
	key := "lease-" + time.Now().Format("20060102150405.000")
	ttl := 400 * time.Millisecond

	unlock, refresh, err := first.LockLease(ctx, key, ttl)
	require.NoError(t, err)
	require.NotNil(t, refresh)

	for range 4 {
		time.Sleep(ttl / 3)
		require.NoError(t, refresh(ctx), "refresh must succeed while held")
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err = second.Lock(ctxTimeout, key, ttl)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "a refreshed lease outlives its original ttl")

	require.NoError(t, unlock(ctx))
	assert.ErrorIs(t, refresh(ctx), ErrLockLost)

	unlock2, err := second.Lock(ctx, key, ttl)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}
