package planner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/strata/internal/graph"
	"github.com/aretw0/strata/pkg/domain"
)

// Symbolic targets accepted by Resolve.
const (
	TargetHead   = "head"
	TargetLatest = "latest"
	TargetHeads  = "heads"
	TargetBase   = "base"
)

// MinPrefix is the shortest id prefix Resolve expands to a full id.
const MinPrefix = 4

// Head returns the revision "head" stands for.
// A graph with one head resolves to it. A branched graph resolves through its
// default head, following the most recently defined child down to a leaf.
// Without a default it fails with *domain.AmbiguousHeadError.
// An empty graph resolves to the base.
func Head(g *graph.Graph) (string, error) {
	heads := g.Heads()
	switch {
	case len(heads) == 0:
		return domain.BaseRevision, nil
	case len(heads) == 1:
		return heads[0], nil
	case g.DefaultHead() != "":
		return g.LatestLeaf(g.DefaultHead()), nil
	default:
		return "", &domain.AmbiguousHeadError{Heads: heads}
	}
}

// Resolve turns a user supplied target into a revision id of g.
// current is the store's marker and anchors relative targets.
//
// Accepted forms: "head" (or "latest", "heads"), "base" (or the empty string),
// "+N" and "-N" relative to current, a full id, or a unique id prefix of at
// least MinPrefix characters.
func Resolve(g *graph.Graph, current, target string) (string, error) {
	target = strings.TrimSpace(target)
	switch strings.ToLower(target) {
	case TargetHead, TargetLatest, TargetHeads:
		return Head(g)
	case TargetBase, "":
		return domain.BaseRevision, nil
	}

	if strings.HasPrefix(target, "+") || strings.HasPrefix(target, "-") {
		n, err := strconv.Atoi(target[1:])
		if err != nil || n < 1 {
			return "", &domain.UnknownRevisionError{ID: target, Source: "target", Reason: "relative targets take a positive step count"}
		}
		if target[0] == '+' {
			return forward(g, current, target, n)
		}
		return backward(g, current, target, n)
	}

	if g.Has(target) {
		return target, nil
	}
	return expandPrefix(g, target)
}

// forward walks n steps from current toward the head of its branch.
func forward(g *graph.Graph, current, target string, n int) (string, error) {
	dest, err := Head(g)
	if err != nil || !g.IsAncestor(current, dest) {
		if current == domain.BaseRevision {
			return "", err
		}
		// Only a single leaf below current can stand in for the head.
		below := headsBelow(g, current)
		if len(below) != 1 {
			return "", &domain.AmbiguousHeadError{Heads: below}
		}
		dest = below[0]
	}

	path := g.PathToRoot(dest)
	idx := len(path)
	if current != domain.BaseRevision {
		for i, id := range path {
			if id == current {
				idx = i
				break
			}
		}
	}
	if idx-n < 0 {
		return "", &domain.UnknownRevisionError{
			ID: target, Source: "target",
			Reason: fmt.Sprintf("only %d revision(s) above %s", idx, domain.DisplayID(current)),
		}
	}
	return path[idx-n], nil
}

// headsBelow returns the heads reachable from id, oldest first.
func headsBelow(g *graph.Graph, id string) []string {
	var out []string
	for _, h := range g.Heads() {
		if g.IsAncestor(id, h) {
			out = append(out, h)
		}
	}
	return out
}

// backward walks n parents up from current.
func backward(g *graph.Graph, current, target string, n int) (string, error) {
	ancestors := g.PathToRoot(current)
	if n > len(ancestors) {
		return "", &domain.UnknownRevisionError{
			ID: target, Source: "target",
			Reason: fmt.Sprintf("only %d revision(s) applied", len(ancestors)),
		}
	}
	if n == len(ancestors) {
		return domain.BaseRevision, nil
	}
	return ancestors[n], nil
}

func expandPrefix(g *graph.Graph, prefix string) (string, error) {
	if len(prefix) < MinPrefix {
		return "", &domain.UnknownRevisionError{ID: prefix, Source: "target"}
	}
	var matches []string
	for _, r := range g.Revisions() {
		if strings.HasPrefix(r.ID, prefix) {
			matches = append(matches, r.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", &domain.UnknownRevisionError{ID: prefix, Source: "target"}
	case 1:
		return matches[0], nil
	default:
		return "", &domain.UnknownRevisionError{
			ID: prefix, Source: "target",
			Reason: "ambiguous prefix: " + strings.Join(matches, ", "),
		}
	}
}
