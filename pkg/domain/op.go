package domain

import (
	"context"
	"fmt"
)

// OpKind names a primitive schema operation.
type OpKind string

const (
	OpAddColumn      OpKind = "add_column"
	OpDropColumn     OpKind = "drop_column"
	OpCreateTable    OpKind = "create_table"
	OpDropTable      OpKind = "drop_table"
	OpAddForeignKey  OpKind = "add_foreign_key"
	OpDropConstraint OpKind = "drop_constraint"
)

// Op is a declarative schema operation, as written in revision documents.
//
//	- op: add_column
//	  table: run
//	  column: {name: finalized_at, type: datetime, nullable: true}
type Op struct {
	Kind  OpKind `json:"op" yaml:"op" mapstructure:"op"`
	Table string `json:"table" yaml:"table" mapstructure:"table"`

	// Name is the column (drop_column) or constraint (drop_constraint) to remove.
	Name string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`

	Column      *Column      `json:"column,omitempty" yaml:"column,omitempty" mapstructure:"column"`
	Columns     []Column     `json:"columns,omitempty" yaml:"columns,omitempty" mapstructure:"columns"`
	ForeignKey  *ForeignKey  `json:"foreign_key,omitempty" yaml:"foreign_key,omitempty" mapstructure:"foreign_key"`
	ForeignKeys []ForeignKey `json:"foreign_keys,omitempty" yaml:"foreign_keys,omitempty" mapstructure:"foreign_keys"`
}

// Validate checks that the op carries the fields its kind requires.
func (o Op) Validate() error {
	if o.Table == "" {
		return fmt.Errorf("%s: table is required", o.Kind)
	}
	switch o.Kind {
	case OpAddColumn:
		if o.Column == nil || o.Column.Name == "" {
			return fmt.Errorf("%s %s: column is required", o.Kind, o.Table)
		}
	case OpDropColumn, OpDropConstraint:
		if o.Name == "" {
			return fmt.Errorf("%s %s: name is required", o.Kind, o.Table)
		}
	case OpCreateTable:
		if len(o.Columns) == 0 {
			return fmt.Errorf("%s %s: at least one column is required", o.Kind, o.Table)
		}
	case OpDropTable:
	case OpAddForeignKey:
		if o.ForeignKey == nil || o.ForeignKey.Name == "" || o.ForeignKey.RefTable == "" {
			return fmt.Errorf("%s %s: named foreign_key with ref_table is required", o.Kind, o.Table)
		}
	default:
		return fmt.Errorf("unknown op %q", o.Kind)
	}
	return nil
}

// Apply runs the op against the schema.
func (o Op) Apply(ctx context.Context, s Schema) error {
	switch o.Kind {
	case OpAddColumn:
		return s.AddColumn(ctx, o.Table, *o.Column)
	case OpDropColumn:
		return s.DropColumn(ctx, o.Table, o.Name)
	case OpCreateTable:
		return s.CreateTable(ctx, Table{Name: o.Table, Columns: o.Columns, ForeignKeys: o.ForeignKeys})
	case OpDropTable:
		return s.DropTable(ctx, o.Table)
	case OpAddForeignKey:
		return s.AddForeignKey(ctx, o.Table, *o.ForeignKey)
	case OpDropConstraint:
		return s.DropConstraint(ctx, o.Table, o.Name)
	}
	return fmt.Errorf("unknown op %q", o.Kind)
}

// Ops composes declarative ops into a single Operation, applied in order.
func Ops(ops []Op) Operation {
	return func(ctx context.Context, s Schema) error {
		for i, op := range ops {
			if err := op.Validate(); err != nil {
				return fmt.Errorf("op %d: %w", i, err)
			}
			if err := op.Apply(ctx, s); err != nil {
				return fmt.Errorf("op %d (%s %s): %w", i, op.Kind, op.Table, err)
			}
		}
		return nil
	}
}
