// Package ddl renders schema operations as SQL for the supported dialects.
package ddl

import (
	"fmt"
	"strings"

	"github.com/aretw0/strata/pkg/domain"
)

// Dialect renders DDL statements for one database engine.
type Dialect struct {
	name        string
	types       map[string]string
	autoInc     func(col domain.Column) string
	placeholder func(n int) string
}

// Name returns the dialect name ("sqlite", "postgres").
func (d *Dialect) Name() string { return d.name }

// Placeholder returns the bind parameter for the n-th argument, starting at 1.
func (d *Dialect) Placeholder(n int) string { return d.placeholder(n) }

// Quote quotes an identifier.
func (d *Dialect) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// ColumnType maps a portable type to the dialect's native type.
// Unknown types pass through unchanged, so native types can be written directly.
func (d *Dialect) ColumnType(t string) string {
	if native, ok := d.types[strings.ToLower(t)]; ok {
		return native
	}
	return t
}

// CreateTable renders CREATE TABLE with columns, primary key and foreign keys.
func (d *Dialect) CreateTable(t domain.Table) string {
	var pk []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}

	var defs []string
	for _, c := range t.Columns {
		defs = append(defs, d.columnDef(c, len(pk) == 1))
	}
	if len(pk) > 1 {
		defs = append(defs, "PRIMARY KEY ("+d.quoteList(pk)+")")
	}
	for _, fk := range t.ForeignKeys {
		defs = append(defs, d.ForeignKeyClause(fk))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", d.Quote(t.Name), strings.Join(defs, ",\n\t"))
}

// AddColumn renders ALTER TABLE ... ADD COLUMN.
func (d *Dialect) AddColumn(table string, c domain.Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", d.Quote(table), d.columnDef(c, false))
}

// DropColumn renders ALTER TABLE ... DROP COLUMN.
func (d *Dialect) DropColumn(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", d.Quote(table), d.Quote(column))
}

// DropTable renders DROP TABLE.
func (d *Dialect) DropTable(table string) string {
	return "DROP TABLE " + d.Quote(table)
}

// RenameTable renders ALTER TABLE ... RENAME TO.
func (d *Dialect) RenameTable(from, to string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", d.Quote(from), d.Quote(to))
}

// AddForeignKey renders ALTER TABLE ... ADD CONSTRAINT.
func (d *Dialect) AddForeignKey(table string, fk domain.ForeignKey) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", d.Quote(table), d.ForeignKeyClause(fk))
}

// DropConstraint renders ALTER TABLE ... DROP CONSTRAINT.
func (d *Dialect) DropConstraint(table, name string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", d.Quote(table), d.Quote(name))
}

// ForeignKeyClause renders a named table-level foreign key constraint.
func (d *Dialect) ForeignKeyClause(fk domain.ForeignKey) string {
	refCols := fk.RefColumns
	if len(refCols) == 0 {
		refCols = []string{"id"}
	}
	return fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		d.Quote(fk.Name), d.quoteList(fk.Columns), d.Quote(fk.RefTable), d.quoteList(refCols))
}

// CopyRows renders INSERT INTO dst SELECT cols FROM src.
func (d *Dialect) CopyRows(dst, src string, columns []string) string {
	cols := d.quoteList(columns)
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", d.Quote(dst), cols, cols, d.Quote(src))
}

func (d *Dialect) columnDef(c domain.Column, inlinePK bool) string {
	parts := []string{d.Quote(c.Name)}
	if c.AutoIncrement && inlinePK && c.PrimaryKey {
		parts = append(parts, d.autoInc(c))
	} else {
		parts = append(parts, d.ColumnType(c.Type))
		if inlinePK && c.PrimaryKey {
			parts = append(parts, "PRIMARY KEY")
		}
	}
	if !c.Nullable && !c.PrimaryKey {
		parts = append(parts, "NOT NULL")
	}
	if c.Default != "" {
		parts = append(parts, "DEFAULT "+c.Default)
	}
	return strings.Join(parts, " ")
}

func (d *Dialect) quoteList(idents []string) string {
	quoted := make([]string, len(idents))
	for i, id := range idents {
		quoted[i] = d.Quote(id)
	}
	return strings.Join(quoted, ", ")
}
