// Package graph links revision definitions into an immutable revision tree.
package graph

import (
	"slices"
	"sort"

	"github.com/aretw0/strata/internal/validator"
	"github.com/aretw0/strata/pkg/domain"
)

// Graph is the validated revision tree. It is read-only after Build.
type Graph struct {
	revs        map[string]*domain.Revision
	order       map[string]int      // definition order, used to break Created ties
	children    map[string][]string // parent id -> children, oldest first; "" holds the root
	paths       map[string][]string // cached root paths, id first
	root        string
	defaultHead string
}

// Option configures Build.
type Option func(*Graph)

// WithDefaultHead designates the revision "head" resolves through on a branched graph.
// It overrides any revision marked Default.
func WithDefaultHead(id string) Option {
	return func(g *Graph) {
		g.defaultHead = id
	}
}

// Build validates the revision set and links it into a Graph.
// It fails with *domain.GraphIntegrityError when the set is not a single tree,
// and with *domain.UnknownRevisionError when the default head is not part of it.
func Build(revs []domain.Revision, opts ...Option) (*Graph, error) {
	if err := validator.ValidateRevisions(revs); err != nil {
		return nil, err
	}

	g := &Graph{
		revs:     make(map[string]*domain.Revision, len(revs)),
		order:    make(map[string]int, len(revs)),
		children: make(map[string][]string),
		paths:    make(map[string][]string, len(revs)),
	}
	for _, opt := range opts {
		opt(g)
	}

	for i := range revs {
		r := revs[i]
		g.revs[r.ID] = &r
		g.order[r.ID] = i
		if r.IsRoot() {
			g.root = r.ID
		}
		if r.Default && g.defaultHead == "" {
			g.defaultHead = r.ID
		}
	}
	if g.defaultHead != "" {
		if _, ok := g.revs[g.defaultHead]; !ok {
			return nil, &domain.UnknownRevisionError{ID: g.defaultHead, Source: "default head"}
		}
	}

	for id, r := range g.revs {
		g.children[r.ParentID] = append(g.children[r.ParentID], id)
	}
	for parent := range g.children {
		sort.Slice(g.children[parent], func(i, j int) bool {
			return g.older(g.children[parent][i], g.children[parent][j])
		})
	}

	for id := range g.revs {
		g.pathToRoot(id)
	}
	return g, nil
}

// older orders revisions by Created, then by definition order.
func (g *Graph) older(a, b string) bool {
	ra, rb := g.revs[a], g.revs[b]
	if !ra.Created.Equal(rb.Created) {
		return ra.Created.Before(rb.Created)
	}
	return g.order[a] < g.order[b]
}

func (g *Graph) pathToRoot(id string) []string {
	if p, ok := g.paths[id]; ok {
		return p
	}
	r := g.revs[id]
	var path []string
	if r.IsRoot() {
		path = []string{id}
	} else {
		parent := g.pathToRoot(r.ParentID)
		path = make([]string, 0, len(parent)+1)
		path = append(path, id)
		path = append(path, parent...)
	}
	g.paths[id] = path
	return path
}

// Len returns the number of revisions.
func (g *Graph) Len() int {
	return len(g.revs)
}

// Get returns the revision with the given id.
func (g *Graph) Get(id string) (*domain.Revision, bool) {
	r, ok := g.revs[id]
	return r, ok
}

// Has reports whether id is part of the graph. The base is always part of it.
func (g *Graph) Has(id string) bool {
	if id == domain.BaseRevision {
		return true
	}
	_, ok := g.revs[id]
	return ok
}

// Root returns the root revision id, or the base for an empty graph.
func (g *Graph) Root() string {
	return g.root
}

// DefaultHead returns the designated default head, if any.
func (g *Graph) DefaultHead() string {
	return g.defaultHead
}

// Children returns the children of id, oldest first.
// Children of the base is the root.
func (g *Graph) Children(id string) []string {
	return slices.Clone(g.children[id])
}

// Heads returns the revisions without children, oldest first.
func (g *Graph) Heads() []string {
	var heads []string
	for id := range g.revs {
		if len(g.children[id]) == 0 {
			heads = append(heads, id)
		}
	}
	sort.Slice(heads, func(i, j int) bool { return g.older(heads[i], heads[j]) })
	return heads
}

// PathToRoot returns the ids from id up to the root, inclusive.
// The path of the base is empty.
func (g *Graph) PathToRoot(id string) []string {
	if id == domain.BaseRevision {
		return nil
	}
	return slices.Clone(g.paths[id])
}

// IsAncestor reports whether ancestor is id itself or lies on id's root path.
// The base is an ancestor of every revision.
func (g *Graph) IsAncestor(ancestor, id string) bool {
	if ancestor == domain.BaseRevision {
		return true
	}
	return slices.Contains(g.paths[id], ancestor)
}

// LatestLeaf follows the most recently defined child from id until it reaches a leaf.
func (g *Graph) LatestLeaf(id string) string {
	current := id
	for {
		kids := g.children[current]
		if len(kids) == 0 {
			return current
		}
		current = kids[len(kids)-1]
	}
}

// Revisions returns every revision parent-first, walking siblings oldest first.
func (g *Graph) Revisions() []*domain.Revision {
	out := make([]*domain.Revision, 0, len(g.revs))
	queue := g.Children(domain.BaseRevision)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		out = append(out, g.revs[id])
		queue = append(queue, g.children[id]...)
	}
	return out
}

// Ancestors returns the ids strictly above id, nearest first.
func (g *Graph) Ancestors(id string) []string {
	path := g.PathToRoot(id)
	if len(path) == 0 {
		return nil
	}
	return path[1:]
}
