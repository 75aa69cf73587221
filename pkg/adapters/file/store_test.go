package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/strata/pkg/adapters/file"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunStoreContract(t, func(t *testing.T) ports.Store {
		return file.New(filepath.Join(t.TempDir(), "schema.json"))
	})
}

func TestFileStore_LockerContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	// Two handles on the same file contend like two processes would.
	ports.RunLockerContract(t, file.New(path), file.New(path))
	ports.RunLeaseContract(t, file.New(path), file.New(path))
}

func TestFileStore_PersistsAcrossHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "schema.json")

	tx, err := file.New(path).Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreateTable(ctx, domain.Table{
		Name:    "run",
		Columns: []domain.Column{{Name: "id", Type: domain.TypeInteger, PrimaryKey: true}},
	}))
	require.NoError(t, tx.WriteMarker(ctx, "r1"))
	require.NoError(t, tx.Commit(ctx))

	reopened := file.New(path)
	marker, err := reopened.ReadMarker(ctx)
	require.NoError(t, err)
	assert.Equal(t, "r1", marker)

	cat, err := reopened.Schema()
	require.NoError(t, err)
	assert.Equal(t, []string{"run"}, cat.TableNames())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files may be left behind")
}

func TestFileStore_ExpiredLockIsTakenOver(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "schema.json")
	store := file.New(path)

	_, err := store.Lock(ctx, "migrate", 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	ctxTimeout, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	unlock, err := store.Lock(ctxTimeout, "migrate", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func TestFileStore_CorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := file.New(path).ReadMarker(context.Background())
	assert.ErrorContains(t, err, "unmarshal")
}
