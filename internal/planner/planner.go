// Package planner computes the ordered steps between two revisions of a graph.
package planner

import (
	"github.com/aretw0/strata/internal/graph"
	"github.com/aretw0/strata/pkg/domain"
)

// Plan returns the steps that move a store at from to the revision to.
//
// The path goes through the lowest common ancestor of both revisions: from is
// reverted child-to-parent up to (but excluding) the ancestor, then the
// ancestor's descendants are applied parent-to-child down to to. The base is a
// virtual node above the root, so a plan from or to the base walks the whole
// root path.
func Plan(g *graph.Graph, from, to string) (*domain.Plan, error) {
	if !g.Has(from) {
		return nil, &domain.UnknownRevisionError{ID: from, Source: "from"}
	}
	if !g.Has(to) {
		return nil, &domain.UnknownRevisionError{ID: to, Source: "target"}
	}

	plan := &domain.Plan{From: from, To: to}
	if from == to {
		return plan, nil
	}

	fromPath := g.PathToRoot(from)
	toPath := g.PathToRoot(to)
	common := commonSuffix(fromPath, toPath)

	for _, id := range fromPath[:len(fromPath)-common] {
		r, _ := g.Get(id)
		plan.Steps = append(plan.Steps, domain.Step{Revision: r, Direction: domain.DirectionDown})
	}
	ups := toPath[:len(toPath)-common]
	for i := len(ups) - 1; i >= 0; i-- {
		r, _ := g.Get(ups[i])
		plan.Steps = append(plan.Steps, domain.Step{Revision: r, Direction: domain.DirectionUp})
	}
	return plan, nil
}

// commonSuffix returns the length of the shared tail of two root paths.
// Both paths end at the same root, so the tail is the ancestry they share.
func commonSuffix(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	return n
}
