package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/strata/internal/graph"
	"github.com/aretw0/strata/internal/runtime"
	"github.com/aretw0/strata/internal/testutils"
	"github.com/aretw0/strata/pkg/adapters/loam"
	"github.com/aretw0/strata/pkg/adapters/sqlite"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunStoreContract(t, func(t *testing.T) ports.Store {
		return openMemory(t)
	})
}

func TestSQLiteStore_LockerContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locks.db")
	first, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	defer first.Close()
	second, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	defer second.Close()

	ports.RunLockerContract(t, first, second)
	ports.RunLeaseContract(t, first, second)
}

func TestSQLiteStore_ExpiredLockIsReclaimed(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)

	_, err := store.Lock(ctx, "migrate", 10*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	ctxTimeout, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	unlock, err := store.Lock(ctxTimeout, "migrate", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func columns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	require.NoError(t, err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func foreignKeys(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query(`SELECT "table" FROM pragma_foreign_key_list(?)`, table)
	require.NoError(t, err)
	defer rows.Close()
	var refs []string
	for rows.Next() {
		var ref string
		require.NoError(t, rows.Scan(&ref))
		refs = append(refs, ref)
	}
	return refs
}

func userTables(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table'
		AND name NOT LIKE 'strata_%' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	return names
}

func TestSQLiteStore_RunTrackingRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)
	db := store.DB()

	source, err := loam.Open(testutils.RunTrackingDir(t, "../../.."))
	require.NoError(t, err)
	revs, err := source.Revisions(ctx)
	require.NoError(t, err)
	g, err := graph.Build(revs)
	require.NoError(t, err)
	engine := runtime.NewEngine(g)

	report, err := engine.Migrate(ctx, store, "head")
	require.NoError(t, err)
	assert.Len(t, report.Applied(), 4)

	assert.Equal(t, []string{"experiment", "note", "run", "run_info"}, userTables(t, db))
	assert.Contains(t, columns(t, db, "run"), "finalized_at")
	assert.Contains(t, columns(t, db, "note"), "experiment_id")
	assert.Contains(t, foreignKeys(t, db, "note"), "experiment")

	// Rows survive the table rebuild the foreign key removal triggers.
	_, err = db.Exec(`INSERT INTO experiment (name) VALUES ('baseline')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO note (content, experiment_id) VALUES ('hello', 1)`)
	require.NoError(t, err)

	_, err = engine.Migrate(ctx, store, "b07e7b07c8ce")
	require.NoError(t, err)
	assert.NotContains(t, columns(t, db, "note"), "experiment_id")
	assert.NotContains(t, foreignKeys(t, db, "note"), "experiment")
	assert.NotContains(t, userTables(t, db), "run_info")

	var content string
	require.NoError(t, db.QueryRow(`SELECT content FROM note`).Scan(&content))
	assert.Equal(t, "hello", content)

	_, err = engine.Migrate(ctx, store, "base")
	require.NoError(t, err)
	assert.Empty(t, userTables(t, db))

	marker, err := store.ReadMarker(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.BaseRevision, marker)

	cat, err := store.Schema(ctx)
	require.NoError(t, err)
	assert.Empty(t, cat.TableNames())
}

func TestSQLiteStore_FailedStepLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)

	g, err := graph.Build([]domain.Revision{
		{ID: "r1", Up: []domain.Op{{Kind: domain.OpCreateTable, Table: "run",
			Columns: []domain.Column{{Name: "id", Type: domain.TypeInteger, PrimaryKey: true}}}}},
		{ID: "r2", ParentID: "r1", Up: []domain.Op{
			{Kind: domain.OpCreateTable, Table: "note", Columns: []domain.Column{{Name: "id", Type: domain.TypeInteger, PrimaryKey: true}}},
			{Kind: domain.OpDropColumn, Table: "run", Name: "missing"},
		}},
	})
	require.NoError(t, err)

	_, err = runtime.NewEngine(g).Migrate(ctx, store, "head")
	require.ErrorIs(t, err, domain.ErrStepExecution)

	marker, err := store.ReadMarker(ctx)
	require.NoError(t, err)
	assert.Equal(t, "r1", marker)
	assert.Equal(t, []string{"run"}, userTables(t, store.DB()))
}
