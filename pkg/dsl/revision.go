package dsl

import (
	"slices"
	"time"

	"github.com/aretw0/strata/pkg/domain"
)

// RevisionBuilder provides a fluent API for configuring a revision.
type RevisionBuilder struct {
	rev     domain.Revision
	builder *Builder
}

// Revision returns a copy of the revision built so far.
func (r *RevisionBuilder) Revision() domain.Revision {
	out := r.rev
	out.Up = slices.Clone(r.rev.Up)
	out.Down = slices.Clone(r.rev.Down)
	return out
}

// Parent sets the predecessor revision.
func (r *RevisionBuilder) Parent(id string) *RevisionBuilder {
	r.rev.ParentID = id
	return r
}

// Then adds a new revision whose parent is this one and returns its builder.
func (r *RevisionBuilder) Then(id string) *RevisionBuilder {
	return r.builder.Add(id).Parent(r.rev.ID)
}

// Label sets the human readable description.
func (r *RevisionBuilder) Label(label string) *RevisionBuilder {
	r.rev.Label = label
	return r
}

// Created sets the authoring time used to order sibling branches.
func (r *RevisionBuilder) Created(t time.Time) *RevisionBuilder {
	r.rev.Created = t
	return r
}

// Default marks the revision's branch as the one "head" resolves to.
func (r *RevisionBuilder) Default() *RevisionBuilder {
	r.rev.Default = true
	return r
}

// Up appends forward ops.
func (r *RevisionBuilder) Up(ops ...domain.Op) *RevisionBuilder {
	r.rev.Up = append(r.rev.Up, ops...)
	return r
}

// Down appends backward ops. They run in the order given.
func (r *RevisionBuilder) Down(ops ...domain.Op) *RevisionBuilder {
	r.rev.Down = append(r.rev.Down, ops...)
	return r
}

// Forward sets a custom forward operation, replacing Up.
func (r *RevisionBuilder) Forward(fn domain.Operation) *RevisionBuilder {
	r.rev.Forward = fn
	return r
}

// Backward sets a custom backward operation, replacing Down.
func (r *RevisionBuilder) Backward(fn domain.Operation) *RevisionBuilder {
	r.rev.Backward = fn
	return r
}

// The reversible helpers below record the forward op and put its inverse
// in front of Down, so the backward half undoes changes in reverse order.

// CreateTable creates a table and drops it on the way down.
func (r *RevisionBuilder) CreateTable(def domain.Table) *RevisionBuilder {
	return r.reversible(
		domain.Op{Kind: domain.OpCreateTable, Table: def.Name, Columns: def.Columns, ForeignKeys: def.ForeignKeys},
		domain.Op{Kind: domain.OpDropTable, Table: def.Name},
	)
}

// AddColumn adds a column and drops it on the way down.
func (r *RevisionBuilder) AddColumn(table string, col domain.Column) *RevisionBuilder {
	return r.reversible(
		domain.Op{Kind: domain.OpAddColumn, Table: table, Column: &col},
		domain.Op{Kind: domain.OpDropColumn, Table: table, Name: col.Name},
	)
}

// AddForeignKey adds a constraint and drops it on the way down.
func (r *RevisionBuilder) AddForeignKey(table string, fk domain.ForeignKey) *RevisionBuilder {
	return r.reversible(
		domain.Op{Kind: domain.OpAddForeignKey, Table: table, ForeignKey: &fk},
		domain.Op{Kind: domain.OpDropConstraint, Table: table, Name: fk.Name},
	)
}

func (r *RevisionBuilder) reversible(up, down domain.Op) *RevisionBuilder {
	r.rev.Up = append(r.rev.Up, up)
	r.rev.Down = append([]domain.Op{down}, r.rev.Down...)
	return r
}
