package runtime

import (
	"context"
	"errors"

	"github.com/aretw0/strata/internal/inspector"
	"github.com/aretw0/strata/internal/planner"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
)

// Status reports the store's marker against the graph. It does not lock.
// An ambiguous head is not an error here: Head stays empty and Pending zero.
func (e *Engine) Status(ctx context.Context, store ports.Store) (*domain.Status, error) {
	current, err := inspector.Current(ctx, store, e.graph)
	if err != nil {
		return nil, err
	}

	st := &domain.Status{
		Current: current,
		Heads:   e.graph.Heads(),
		Applied: len(e.graph.PathToRoot(current)),
	}

	head, err := planner.Head(e.graph)
	var ambiguous *domain.AmbiguousHeadError
	switch {
	case errors.As(err, &ambiguous):
		return st, nil
	case err != nil:
		return nil, err
	}
	st.Head = head

	plan, err := planner.Plan(e.graph, current, head)
	if err != nil {
		return nil, err
	}
	st.Pending = len(plan.Steps)
	return st, nil
}

// History lists every revision from the heads down to the root, newest first,
// flagged against the store's marker.
func (e *Engine) History(ctx context.Context, store ports.Store) ([]domain.HistoryEntry, error) {
	current, err := inspector.Current(ctx, store, e.graph)
	if err != nil {
		return nil, err
	}

	revs := e.graph.Revisions()
	entries := make([]domain.HistoryEntry, 0, len(revs))
	for i := len(revs) - 1; i >= 0; i-- {
		r := revs[i]
		entries = append(entries, domain.HistoryEntry{
			Revision: r,
			Applied:  current != domain.BaseRevision && e.graph.IsAncestor(r.ID, current),
			Current:  r.ID == current,
			Head:     len(e.graph.Children(r.ID)) == 0,
		})
	}
	return entries, nil
}
