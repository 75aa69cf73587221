package domain

import (
	"context"
	"time"
)

// BaseRevision is the marker value of a store that has no revision applied.
const BaseRevision = ""

// Operation mutates a schema in place. It is the forward or backward half of a Revision.
type Operation func(ctx context.Context, s Schema) error

// Revision is one atomic, versioned schema change.
// Revisions are immutable once handed to the engine.
type Revision struct {
	// ID uniquely identifies the revision (e.g. "3c4f22db7a46").
	ID string `json:"id" yaml:"id"`

	// ParentID references the predecessor revision. Empty for the root.
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`

	// Label is a human readable description ("run end time").
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// Created records when the revision was authored. Used to order sibling branches.
	Created time.Time `json:"created,omitempty" yaml:"created,omitempty"`

	// Default designates the branch that "head" resolves to when the graph has several heads.
	Default bool `json:"default,omitempty" yaml:"default,omitempty"`

	// Forward applies the change. When nil, Up is used.
	Forward Operation `json:"-" yaml:"-"`

	// Backward reverts the change. When nil, Down is used.
	// The engine cannot verify that Backward is the inverse of Forward.
	Backward Operation `json:"-" yaml:"-"`

	// Up and Down are declarative alternatives to Forward/Backward.
	Up   []Op `json:"up,omitempty" yaml:"up,omitempty"`
	Down []Op `json:"down,omitempty" yaml:"down,omitempty"`
}

// IsRoot reports whether the revision has no predecessor.
func (r *Revision) IsRoot() bool {
	return r.ParentID == BaseRevision
}

// Operation returns the operation to run for the given direction.
// Declarative ops are used when no function is set; a revision with neither is a no-op.
func (r *Revision) Operation(dir Direction) Operation {
	if dir == DirectionUp {
		if r.Forward != nil {
			return r.Forward
		}
		return Ops(r.Up)
	}
	if r.Backward != nil {
		return r.Backward
	}
	return Ops(r.Down)
}

// DisplayID renders a revision id for humans, naming the base explicitly.
func DisplayID(id string) string {
	if id == BaseRevision {
		return "<base>"
	}
	return id
}
