package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
)

// Source implements ports.RevisionSource over revisions defined in Go.
type Source struct {
	revs []domain.Revision
}

var _ ports.RevisionSource = (*Source)(nil)

// NewSource creates a source holding the given revisions.
func NewSource(revs ...domain.Revision) *Source {
	return &Source{revs: slices.Clone(revs)}
}

// Add appends a revision. It fails when the id is empty.
func (s *Source) Add(rev domain.Revision) error {
	if rev.ID == "" {
		return fmt.Errorf("revision missing ID")
	}
	s.revs = append(s.revs, rev)
	return nil
}

// Revisions returns a copy of the stored revisions.
func (s *Source) Revisions(ctx context.Context) ([]domain.Revision, error) {
	return slices.Clone(s.revs), nil
}
