package domain

import "context"

// Portable column types. Store dialects map them to native types.
const (
	TypeInteger  = "integer"
	TypeBigInt   = "bigint"
	TypeText     = "text"
	TypeString   = "string"
	TypeBoolean  = "boolean"
	TypeFloat    = "float"
	TypeDateTime = "datetime"
	TypeJSON     = "json"
)

// Column describes a table column.
type Column struct {
	Name          string `json:"name" yaml:"name" mapstructure:"name"`
	Type          string `json:"type" yaml:"type" mapstructure:"type"`
	Nullable      bool   `json:"nullable,omitempty" yaml:"nullable,omitempty" mapstructure:"nullable"`
	PrimaryKey    bool   `json:"primary_key,omitempty" yaml:"primary_key,omitempty" mapstructure:"primary_key"`
	AutoIncrement bool   `json:"autoincrement,omitempty" yaml:"autoincrement,omitempty" mapstructure:"autoincrement"`
	Default       string `json:"default,omitempty" yaml:"default,omitempty" mapstructure:"default"`
}

// ForeignKey describes a named foreign key constraint.
type ForeignKey struct {
	Name       string   `json:"name" yaml:"name" mapstructure:"name"`
	Columns    []string `json:"columns" yaml:"columns" mapstructure:"columns"`
	RefTable   string   `json:"ref_table" yaml:"ref_table" mapstructure:"ref_table"`
	RefColumns []string `json:"ref_columns" yaml:"ref_columns" mapstructure:"ref_columns"`
}

// Table describes a full table definition.
type Table struct {
	Name        string       `json:"name" yaml:"name" mapstructure:"name"`
	Columns     []Column     `json:"columns" yaml:"columns" mapstructure:"columns"`
	ForeignKeys []ForeignKey `json:"foreign_keys,omitempty" yaml:"foreign_keys,omitempty" mapstructure:"foreign_keys"`
}

// Column returns the column with the given name, if present.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Schema is the mutation surface revisions operate on.
// Stores implement it on their transactions so that every change is
// committed together with the marker update.
type Schema interface {
	AddColumn(ctx context.Context, table string, col Column) error
	DropColumn(ctx context.Context, table, column string) error
	CreateTable(ctx context.Context, def Table) error
	DropTable(ctx context.Context, table string) error
	AddForeignKey(ctx context.Context, table string, fk ForeignKey) error
	DropConstraint(ctx context.Context, table, name string) error
}
