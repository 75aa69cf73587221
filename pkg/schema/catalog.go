package schema

import (
	"context"
	"slices"
	"sort"

	"github.com/aretw0/strata/pkg/domain"
)

// Catalog is an in-memory schema: a set of tables keyed by name.
type Catalog struct {
	Tables map[string]*domain.Table `json:"tables"`
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{Tables: make(map[string]*domain.Table)}
}

// Clone returns a deep copy, so a transaction can mutate it without touching the original.
func (c *Catalog) Clone() *Catalog {
	out := New()
	for name, t := range c.Tables {
		cp := domain.Table{
			Name:    t.Name,
			Columns: slices.Clone(t.Columns),
		}
		for _, fk := range t.ForeignKeys {
			cp.ForeignKeys = append(cp.ForeignKeys, cloneFK(fk))
		}
		out.Tables[name] = &cp
	}
	return out
}

// Table returns a copy of the named table.
func (c *Catalog) Table(name string) (domain.Table, bool) {
	t, ok := c.Tables[name]
	if !ok {
		return domain.Table{}, false
	}
	return *t, true
}

// TableNames returns the table names in sorted order.
func (c *Catalog) TableNames() []string {
	names := make([]string, 0, len(c.Tables))
	for name := range c.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Equal reports whether two catalogs describe the same schema.
// Column and constraint order matters, nil and empty lists are equal.
func (c *Catalog) Equal(other *Catalog) bool {
	if len(c.Tables) != len(other.Tables) {
		return false
	}
	for name, t := range c.Tables {
		o, ok := other.Tables[name]
		if !ok {
			return false
		}
		if !slices.Equal(t.Columns, o.Columns) {
			return false
		}
		if !slices.EqualFunc(t.ForeignKeys, o.ForeignKeys, equalFK) {
			return false
		}
	}
	return true
}

// AddColumn implements domain.Schema.
func (c *Catalog) AddColumn(_ context.Context, table string, col domain.Column) error {
	t, ok := c.Tables[table]
	if !ok {
		return notFound("table", table)
	}
	if _, dup := t.Column(col.Name); dup {
		return exists("column", table+"."+col.Name)
	}
	t.Columns = append(t.Columns, col)
	return nil
}

// DropColumn implements domain.Schema.
// A column still used by a foreign key, on either side, cannot be dropped.
func (c *Catalog) DropColumn(_ context.Context, table, column string) error {
	t, ok := c.Tables[table]
	if !ok {
		return notFound("table", table)
	}
	idx := slices.IndexFunc(t.Columns, func(col domain.Column) bool { return col.Name == column })
	if idx < 0 {
		return notFound("column", table+"."+column)
	}
	for _, fk := range t.ForeignKeys {
		if slices.Contains(fk.Columns, column) {
			return inUse("column", table+"."+column, fk.Name)
		}
	}
	for _, other := range c.Tables {
		for _, fk := range other.ForeignKeys {
			if fk.RefTable == table && slices.Contains(fk.RefColumns, column) {
				return inUse("column", table+"."+column, other.Name+"."+fk.Name)
			}
		}
	}
	t.Columns = slices.Delete(t.Columns, idx, idx+1)
	if len(t.Columns) == 0 {
		t.Columns = nil
	}
	return nil
}

// CreateTable implements domain.Schema.
func (c *Catalog) CreateTable(ctx context.Context, def domain.Table) error {
	if _, ok := c.Tables[def.Name]; ok {
		return exists("table", def.Name)
	}
	t := &domain.Table{Name: def.Name}
	for _, col := range def.Columns {
		if _, dup := t.Column(col.Name); dup {
			return exists("column", def.Name+"."+col.Name)
		}
		t.Columns = append(t.Columns, col)
	}
	c.Tables[def.Name] = t
	for _, fk := range def.ForeignKeys {
		if err := c.AddForeignKey(ctx, def.Name, fk); err != nil {
			delete(c.Tables, def.Name)
			return err
		}
	}
	return nil
}

// DropTable implements domain.Schema.
// A table referenced by another table's foreign key cannot be dropped.
func (c *Catalog) DropTable(_ context.Context, table string) error {
	if _, ok := c.Tables[table]; !ok {
		return notFound("table", table)
	}
	for _, other := range c.Tables {
		if other.Name == table {
			continue
		}
		for _, fk := range other.ForeignKeys {
			if fk.RefTable == table {
				return inUse("table", table, other.Name+"."+fk.Name)
			}
		}
	}
	delete(c.Tables, table)
	return nil
}

// AddForeignKey implements domain.Schema.
func (c *Catalog) AddForeignKey(_ context.Context, table string, fk domain.ForeignKey) error {
	t, ok := c.Tables[table]
	if !ok {
		return notFound("table", table)
	}
	if slices.ContainsFunc(t.ForeignKeys, func(existing domain.ForeignKey) bool { return existing.Name == fk.Name }) {
		return exists("constraint", table+"."+fk.Name)
	}
	for _, col := range fk.Columns {
		if _, ok := t.Column(col); !ok {
			return notFound("column", table+"."+col)
		}
	}
	ref, ok := c.Tables[fk.RefTable]
	if !ok {
		return notFound("table", fk.RefTable)
	}
	for _, col := range fk.RefColumns {
		if _, ok := ref.Column(col); !ok {
			return notFound("column", fk.RefTable+"."+col)
		}
	}
	t.ForeignKeys = append(t.ForeignKeys, cloneFK(fk))
	return nil
}

// DropConstraint implements domain.Schema.
func (c *Catalog) DropConstraint(_ context.Context, table, name string) error {
	t, ok := c.Tables[table]
	if !ok {
		return notFound("table", table)
	}
	idx := slices.IndexFunc(t.ForeignKeys, func(fk domain.ForeignKey) bool { return fk.Name == name })
	if idx < 0 {
		return notFound("constraint", table+"."+name)
	}
	t.ForeignKeys = slices.Delete(t.ForeignKeys, idx, idx+1)
	if len(t.ForeignKeys) == 0 {
		t.ForeignKeys = nil
	}
	return nil
}

func cloneFK(fk domain.ForeignKey) domain.ForeignKey {
	fk.Columns = slices.Clone(fk.Columns)
	fk.RefColumns = slices.Clone(fk.RefColumns)
	return fk
}

func equalFK(a, b domain.ForeignKey) bool {
	return a.Name == b.Name && a.RefTable == b.RefTable &&
		slices.Equal(a.Columns, b.Columns) && slices.Equal(a.RefColumns, b.RefColumns)
}

var _ domain.Schema = (*Catalog)(nil)
