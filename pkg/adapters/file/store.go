package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/strata/pkg/ports"
	"github.com/aretw0/strata/pkg/schema"
)

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("transaction already finished")

// Snapshot is the on-disk document: the marker next to the schema it describes.
type Snapshot struct {
	Version string          `json:"version"`
	Schema  *schema.Catalog `json:"schema"`
}

// Store implements ports.Store as a single JSON snapshot file.
// Every commit rewrites the file atomically, so the marker and the schema
// always change together.
type Store struct {
	Path string

	mu sync.Mutex
}

var (
	_ ports.Store       = (*Store)(nil)
	_ ports.LeaseLocker = (*Store)(nil)
)

// New creates a Store at path.
// If path is empty, it defaults to ".strata/schema.json".
func New(path string) *Store {
	if path == "" {
		path = filepath.Join(".strata", "schema.json")
	}
	return &Store{Path: path}
}

// ReadMarker returns the committed marker. A missing file is an unmigrated store.
func (s *Store) ReadMarker(ctx context.Context) (string, error) {
	snap, err := s.load()
	if err != nil {
		return "", err
	}
	return snap.Version, nil
}

// Schema returns the committed schema.
func (s *Store) Schema() (*schema.Catalog, error) {
	snap, err := s.load()
	if err != nil {
		return nil, err
	}
	return snap.Schema, nil
}

// Begin loads the snapshot into a private transaction copy.
func (s *Store) Begin(ctx context.Context) (ports.Tx, error) {
	snap, err := s.load()
	if err != nil {
		return nil, err
	}
	return &Tx{Catalog: snap.Schema, store: s, marker: snap.Version}, nil
}

func (s *Store) load() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{Schema: schema.New()}, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if snap.Schema == nil || snap.Schema.Tables == nil {
		snap.Schema = schema.New()
	}
	return &snap, nil
}

// save writes the snapshot atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) save(snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-"+filepath.Base(s.Path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Tx stages schema changes on a catalog copy until Commit.
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

// Commit writes the staged schema and marker as a new snapshot.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	return t.store.save(&Snapshot{Version: t.marker, Schema: t.Catalog})
}

// Rollback discards the transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	t.done = true
	return nil
}
