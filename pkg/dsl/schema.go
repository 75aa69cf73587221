package dsl

import "github.com/aretw0/strata/pkg/domain"

// ColumnOption configures a column built with Col.
type ColumnOption func(*domain.Column)

// PrimaryKey marks the column as part of the primary key.
func PrimaryKey() ColumnOption {
	return func(c *domain.Column) { c.PrimaryKey = true }
}

// AutoIncrement lets the database assign the value.
func AutoIncrement() ColumnOption {
	return func(c *domain.Column) { c.AutoIncrement = true }
}

// Nullable allows NULL values.
func Nullable() ColumnOption {
	return func(c *domain.Column) { c.Nullable = true }
}

// Default sets the SQL default expression, written verbatim.
func Default(expr string) ColumnOption {
	return func(c *domain.Column) { c.Default = expr }
}

// Col builds a column of a portable type (domain.TypeInteger, ...).
func Col(name, typ string, opts ...ColumnOption) domain.Column {
	c := domain.Column{Name: name, Type: typ}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Table builds a table definition.
func Table(name string, cols ...domain.Column) domain.Table {
	return domain.Table{Name: name, Columns: cols}
}

// FK builds a foreign key from columns to refTable's primary key columns.
// With no refColumns, the key references "id".
func FK(name string, columns []string, refTable string, refColumns ...string) domain.ForeignKey {
	return domain.ForeignKey{Name: name, Columns: columns, RefTable: refTable, RefColumns: refColumns}
}

// WithForeignKeys returns def with the given constraints appended.
func WithForeignKeys(def domain.Table, fks ...domain.ForeignKey) domain.Table {
	def.ForeignKeys = append(def.ForeignKeys, fks...)
	return def
}

// DropColumn is the op removing a column.
func DropColumn(table, name string) domain.Op {
	return domain.Op{Kind: domain.OpDropColumn, Table: table, Name: name}
}

// DropTable is the op removing a table.
func DropTable(table string) domain.Op {
	return domain.Op{Kind: domain.OpDropTable, Table: table}
}

// DropConstraint is the op removing a named constraint.
func DropConstraint(table, name string) domain.Op {
	return domain.Op{Kind: domain.OpDropConstraint, Table: table, Name: name}
}
