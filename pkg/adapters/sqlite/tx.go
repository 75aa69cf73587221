package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/strata/internal/ddl"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/schema"
)

// rebuildPrefix names the temporary copy of a table being rebuilt.
const rebuildPrefix = "_strata_rebuild_"

// Tx is a migration step on SQLite. Every change is checked against the
// catalog first, then executed as DDL inside the database transaction.
type Tx struct {
	tx      *sql.Tx
	dialect *ddl.Dialect
	catalog *schema.Catalog
	touched map[string]bool
}

func (t *Tx) exec(ctx context.Context, stmt string, args ...any) error {
	if _, err := t.tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("%s: %w", stmt, err)
	}
	return nil
}

// CreateTable implements domain.Schema.
func (t *Tx) CreateTable(ctx context.Context, def domain.Table) error {
	if err := t.catalog.CreateTable(ctx, def); err != nil {
		return err
	}
	t.touched[def.Name] = true
	created, _ := t.catalog.Table(def.Name)
	return t.exec(ctx, t.dialect.CreateTable(created))
}

// DropTable implements domain.Schema.
func (t *Tx) DropTable(ctx context.Context, table string) error {
	if err := t.catalog.DropTable(ctx, table); err != nil {
		return err
	}
	t.touched[table] = true
	return t.exec(ctx, t.dialect.DropTable(table))
}

// AddColumn implements domain.Schema. Primary key columns need a rebuild.
func (t *Tx) AddColumn(ctx context.Context, table string, col domain.Column) error {
	before, _ := t.catalog.Table(table)
	if err := t.catalog.AddColumn(ctx, table, col); err != nil {
		return err
	}
	t.touched[table] = true
	if col.PrimaryKey {
		return t.rebuild(ctx, table, columnNames(before))
	}
	return t.exec(ctx, t.dialect.AddColumn(table, col))
}

// DropColumn implements domain.Schema.
func (t *Tx) DropColumn(ctx context.Context, table, column string) error {
	if err := t.catalog.DropColumn(ctx, table, column); err != nil {
		return err
	}
	t.touched[table] = true
	after, _ := t.catalog.Table(table)
	return t.rebuild(ctx, table, columnNames(after))
}

// AddForeignKey implements domain.Schema.
func (t *Tx) AddForeignKey(ctx context.Context, table string, fk domain.ForeignKey) error {
	if err := t.catalog.AddForeignKey(ctx, table, fk); err != nil {
		return err
	}
	t.touched[table] = true
	after, _ := t.catalog.Table(table)
	return t.rebuild(ctx, table, columnNames(after))
}

// DropConstraint implements domain.Schema.
func (t *Tx) DropConstraint(ctx context.Context, table, name string) error {
	if err := t.catalog.DropConstraint(ctx, table, name); err != nil {
		return err
	}
	t.touched[table] = true
	after, _ := t.catalog.Table(table)
	return t.rebuild(ctx, table, columnNames(after))
}

// rebuild recreates table from its catalog definition, keeping the rows of
// the listed columns.
func (t *Tx) rebuild(ctx context.Context, table string, keep []string) error {
	def, _ := t.catalog.Table(table)
	tmp := rebuildPrefix + table
	def.Name = tmp

	stmts := []string{t.dialect.CreateTable(def)}
	if len(keep) > 0 {
		stmts = append(stmts, t.dialect.CopyRows(tmp, table, keep))
	}
	stmts = append(stmts,
		t.dialect.DropTable(table),
		t.dialect.RenameTable(tmp, table),
	)
	for _, stmt := range stmts {
		if err := t.exec(ctx, stmt); err != nil {
			return fmt.Errorf("rebuild %s: %w", table, err)
		}
	}
	return nil
}

// WriteMarker replaces the version row. The base is stored as no row.
func (t *Tx) WriteMarker(ctx context.Context, id string) error {
	if err := t.exec(ctx, `DELETE FROM `+VersionTable); err != nil {
		return err
	}
	if id == domain.BaseRevision {
		return nil
	}
	return t.exec(ctx, `INSERT INTO `+VersionTable+` (version_num) VALUES (?)`, id)
}

// Commit saves the catalog of touched tables and commits.
func (t *Tx) Commit(ctx context.Context) error {
	for name := range t.touched {
		def, ok := t.catalog.Table(name)
		if !ok {
			if err := t.exec(ctx, `DELETE FROM `+CatalogTable+` WHERE name = ?`, name); err != nil {
				return err
			}
			continue
		}
		data, err := json.Marshal(def)
		if err != nil {
			return fmt.Errorf("marshal table %s: %w", name, err)
		}
		if err := t.exec(ctx,
			`INSERT INTO `+CatalogTable+` (name, definition) VALUES (?, ?)
			 ON CONFLICT (name) DO UPDATE SET definition = excluded.definition`,
			name, string(data)); err != nil {
			return err
		}
	}
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback discards the transaction. It is a no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

func columnNames(t domain.Table) []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
