package ports

import (
	"context"

	"github.com/aretw0/strata/pkg/domain"
)

// RevisionSource defines how the engine discovers revision definitions.
// This allows the definition format (Go code, Loam documents, memory) to be decoupled.
// The order of the returned slice does not affect the graph shape.
type RevisionSource interface {
	Revisions(ctx context.Context) ([]domain.Revision, error)
}

// RevisionSourceFunc adapts a function to RevisionSource.
type RevisionSourceFunc func(ctx context.Context) ([]domain.Revision, error)

// Revisions implements RevisionSource.
func (f RevisionSourceFunc) Revisions(ctx context.Context) ([]domain.Revision, error) {
	return f(ctx)
}
