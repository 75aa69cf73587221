// Package sqlite implements the migration store on SQLite through database/sql
// and the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/strata/internal/ddl"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/aretw0/strata/pkg/schema"

	_ "modernc.org/sqlite"
)

// Bookkeeping tables. They are created on Open and never appear in the catalog.
const (
	VersionTable = "strata_version"
	CatalogTable = "strata_catalog"
	LockTable    = "strata_lock"
)

var bootstrap = []string{
	`CREATE TABLE IF NOT EXISTS ` + VersionTable + ` (version_num VARCHAR(64) NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS ` + CatalogTable + ` (name TEXT PRIMARY KEY, definition TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS ` + LockTable + ` (lock_key TEXT PRIMARY KEY, owner TEXT NOT NULL, expires_at INTEGER NOT NULL)`,
}

// Store implements ports.Store and ports.LeaseLocker on SQLite.
//
// SQLite cannot add or drop constraints in place, so the store keeps the
// definition of every table it manages in CatalogTable and rebuilds a table
// (create copy, move rows, drop, rename) when a change needs it. Tables
// created outside the store are not known to it.
type Store struct {
	db *sql.DB
}

var (
	_ ports.Store       = (*Store)(nil)
	_ ports.LeaseLocker = (*Store)(nil)
)

// Open opens the database at dsn (a file path or ":memory:") and prepares
// the bookkeeping tables.
func Open(ctx context.Context, dsn string) (*Store, error) {
	// Pragmas in the DSN apply to every connection in the pool.
	if dsn != ":memory:" {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	s, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing database handle.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	for _, stmt := range bootstrap {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("bootstrap sqlite store: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// ReadMarker returns the committed marker.
func (s *Store) ReadMarker(ctx context.Context) (string, error) {
	var version string
	err := s.db.QueryRowContext(ctx, `SELECT version_num FROM `+VersionTable+` LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.BaseRevision, nil
	}
	if err != nil {
		return "", fmt.Errorf("read marker: %w", err)
	}
	return version, nil
}

// Schema returns the catalog of managed tables.
func (s *Store) Schema(ctx context.Context) (*schema.Catalog, error) {
	return loadCatalog(ctx, s.db)
}

// Begin opens a database transaction for one migration step.
func (s *Store) Begin(ctx context.Context) (ports.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	cat, err := loadCatalog(ctx, tx)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	return &Tx{
		tx:      tx,
		dialect: ddl.SQLite,
		catalog: cat,
		touched: make(map[string]bool),
	}, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadCatalog(ctx context.Context, q queryer) (*schema.Catalog, error) {
	rows, err := q.QueryContext(ctx, `SELECT name, definition FROM `+CatalogTable)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()

	cat := schema.New()
	for rows.Next() {
		var name, def string
		if err := rows.Scan(&name, &def); err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		var t domain.Table
		if err := json.Unmarshal([]byte(def), &t); err != nil {
			return nil, fmt.Errorf("load catalog: table %s: %w", name, err)
		}
		cat.Tables[name] = &t
	}
	return cat, rows.Err()
}
