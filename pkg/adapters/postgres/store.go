// Package postgres implements the migration store on PostgreSQL with pgx.
// PostgreSQL runs DDL transactionally, so every step commits or vanishes as a whole.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/strata/internal/ddl"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VersionTable holds the marker as a single row. The base is stored as no row.
const VersionTable = "strata_version"

// Store implements ports.Store and ports.DistributedLocker on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ ports.Store             = (*Store)(nil)
	_ ports.DistributedLocker = (*Store)(nil)
)

// Open connects to the database at url and prepares the version table.
func Open(ctx context.Context, url string) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse pg config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pg pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping pg: %w", err)
	}

	s, err := New(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+VersionTable+` (version_num VARCHAR(64) NOT NULL)`)
	if err != nil {
		return nil, fmt.Errorf("bootstrap pg store: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Pool returns the underlying pgxpool.Pool.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Close closes the connection pool.
func (s *Store) Close() { s.pool.Close() }

// ReadMarker returns the committed marker.
func (s *Store) ReadMarker(ctx context.Context) (string, error) {
	var version string
	err := s.pool.QueryRow(ctx, `SELECT version_num FROM `+VersionTable+` LIMIT 1`).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.BaseRevision, nil
	}
	if err != nil {
		return "", fmt.Errorf("read marker: %w", err)
	}
	return version, nil
}

// Begin opens a transaction for one migration step.
func (s *Store) Begin(ctx context.Context) (ports.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &Tx{tx: tx, dialect: ddl.Postgres}, nil
}

// Tx is a migration step on PostgreSQL.
// Each statement runs in its own savepoint, so a failed statement reports
// an error without aborting the surrounding transaction.
type Tx struct {
	tx      pgx.Tx
	dialect *ddl.Dialect
}

func (t *Tx) exec(ctx context.Context, stmt string, args ...any) error {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if _, err := sp.Exec(ctx, stmt, args...); err != nil {
		_ = sp.Rollback(ctx)
		return fmt.Errorf("%s: %w", stmt, err)
	}
	return sp.Commit(ctx)
}

// CreateTable implements domain.Schema.
func (t *Tx) CreateTable(ctx context.Context, def domain.Table) error {
	return t.exec(ctx, t.dialect.CreateTable(def))
}

// DropTable implements domain.Schema.
func (t *Tx) DropTable(ctx context.Context, table string) error {
	return t.exec(ctx, t.dialect.DropTable(table))
}

// AddColumn implements domain.Schema.
func (t *Tx) AddColumn(ctx context.Context, table string, col domain.Column) error {
	return t.exec(ctx, t.dialect.AddColumn(table, col))
}

// DropColumn implements domain.Schema.
func (t *Tx) DropColumn(ctx context.Context, table, column string) error {
	return t.exec(ctx, t.dialect.DropColumn(table, column))
}

// AddForeignKey implements domain.Schema.
func (t *Tx) AddForeignKey(ctx context.Context, table string, fk domain.ForeignKey) error {
	return t.exec(ctx, t.dialect.AddForeignKey(table, fk))
}

// DropConstraint implements domain.Schema.
func (t *Tx) DropConstraint(ctx context.Context, table, name string) error {
	return t.exec(ctx, t.dialect.DropConstraint(table, name))
}

// WriteMarker replaces the version row.
func (t *Tx) WriteMarker(ctx context.Context, id string) error {
	if err := t.exec(ctx, `DELETE FROM `+VersionTable); err != nil {
		return err
	}
	if id == domain.BaseRevision {
		return nil
	}
	return t.exec(ctx, `INSERT INTO `+VersionTable+` (version_num) VALUES ($1)`, id)
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback discards the transaction. It is a no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}
