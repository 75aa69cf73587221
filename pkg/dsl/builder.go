package dsl

import (
	"fmt"

	"github.com/aretw0/strata/internal/validator"
	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/domain"
)

// Builder manages the revision set construction.
type Builder struct {
	order []string
	revs  map[string]*RevisionBuilder
}

// New creates a new revision builder.
func New() *Builder {
	return &Builder{
		revs: make(map[string]*RevisionBuilder),
	}
}

// Add creates a new revision with no parent.
// If the revision already exists, it returns the existing builder.
func (b *Builder) Add(id string) *RevisionBuilder {
	if rb, ok := b.revs[id]; ok {
		return rb
	}
	rb := &RevisionBuilder{
		rev:     domain.Revision{ID: id},
		builder: b,
	}
	b.revs[id] = rb
	b.order = append(b.order, id)
	return rb
}

// Revisions returns the revisions in the order they were added.
func (b *Builder) Revisions() []domain.Revision {
	out := make([]domain.Revision, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.revs[id].Revision())
	}
	return out
}

// Build validates the revisions and compiles them into a memory.Source.
func (b *Builder) Build() (*memory.Source, error) {
	revs := b.Revisions()
	for _, r := range revs {
		for dir, ops := range map[domain.Direction][]domain.Op{domain.DirectionUp: r.Up, domain.DirectionDown: r.Down} {
			for i, op := range ops {
				if err := op.Validate(); err != nil {
					return nil, fmt.Errorf("revision %s %s op %d: %w", r.ID, dir, i, err)
				}
			}
		}
	}
	if err := validator.ValidateRevisions(revs); err != nil {
		return nil, fmt.Errorf("failed to build revision source: %w", err)
	}
	return memory.NewSource(revs...), nil
}

// MustBuild is like Build but panics on error. Intended for tests and package-level setup.
func (b *Builder) MustBuild() *memory.Source {
	src, err := b.Build()
	if err != nil {
		panic(err)
	}
	return src
}
