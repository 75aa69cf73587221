package planner_test

import (
	"testing"

	"github.com/aretw0/strata/internal/graph"
	"github.com/aretw0/strata/internal/planner"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tree builds:
//
//	r1 -> r2 -> r3
//	        \-> b1 -> b2
func tree(t *testing.T, opts ...graph.Option) *graph.Graph {
	t.Helper()
	g, err := graph.Build([]domain.Revision{
		{ID: "r1"},
		{ID: "r2", ParentID: "r1"},
		{ID: "r3", ParentID: "r2"},
		{ID: "b1", ParentID: "r2"},
		{ID: "b2", ParentID: "b1"},
	}, opts...)
	require.NoError(t, err)
	return g
}

func linear(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Build([]domain.Revision{
		{ID: "1975ea83b712"},
		{ID: "2b4a8d3f1c90", ParentID: "1975ea83b712"},
		{ID: "3c4f22db7a46", ParentID: "2b4a8d3f1c90"},
	})
	require.NoError(t, err)
	return g
}

type step struct {
	id  string
	dir domain.Direction
}

func steps(p *domain.Plan) []step {
	var out []step
	for _, s := range p.Steps {
		out = append(out, step{s.Revision.ID, s.Direction})
	}
	return out
}

func TestPlan(t *testing.T) {
	g := tree(t)
	up, down := domain.DirectionUp, domain.DirectionDown

	tests := []struct {
		name     string
		from, to string
		want     []step
	}{
		{"base to head", "", "r3", []step{{"r1", up}, {"r2", up}, {"r3", up}}},
		{"head to base", "r3", "", []step{{"r3", down}, {"r2", down}, {"r1", down}}},
		{"partial upgrade", "r1", "r3", []step{{"r2", up}, {"r3", up}}},
		{"partial downgrade", "r3", "r2", []step{{"r3", down}}},
		{"across branches", "r3", "b2", []step{{"r3", down}, {"b1", up}, {"b2", up}}},
		{"back across branches", "b2", "r3", []step{{"b2", down}, {"b1", down}, {"r3", up}}},
		{"same revision", "r2", "r2", nil},
		{"base to base", "", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := planner.Plan(g, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.from, p.From)
			assert.Equal(t, tt.to, p.To)
			assert.Equal(t, tt.want, steps(p))
		})
	}
}

func TestPlan_StepsEndAtTarget(t *testing.T) {
	g := tree(t)
	ids := []string{"", "r1", "r2", "r3", "b1", "b2"}
	for _, from := range ids {
		for _, to := range ids {
			p, err := planner.Plan(g, from, to)
			require.NoError(t, err)
			marker := from
			for _, s := range p.Steps {
				marker = s.ResultID()
			}
			assert.Equal(t, to, marker, "plan %q -> %q", from, to)
		}
	}
}

func TestPlan_UnknownRevision(t *testing.T) {
	g := tree(t)

	_, err := planner.Plan(g, "ghost", "r1")
	var unknown *domain.UnknownRevisionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "from", unknown.Source)

	_, err = planner.Plan(g, "r1", "ghost")
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "target", unknown.Source)
}

func TestResolve_Linear(t *testing.T) {
	g := linear(t)

	tests := []struct {
		current, target, want string
	}{
		{"", "head", "3c4f22db7a46"},
		{"", "latest", "3c4f22db7a46"},
		{"3c4f22db7a46", "base", ""},
		{"", "+1", "1975ea83b712"},
		{"1975ea83b712", "+2", "3c4f22db7a46"},
		{"3c4f22db7a46", "-1", "2b4a8d3f1c90"},
		{"3c4f22db7a46", "-3", ""},
		{"", "2b4a", "2b4a8d3f1c90"},
		{"", "1975ea83b712", "1975ea83b712"},
	}
	for _, tt := range tests {
		got, err := planner.Resolve(g, tt.current, tt.target)
		require.NoError(t, err, "%s from %q", tt.target, tt.current)
		assert.Equal(t, tt.want, got, "%s from %q", tt.target, tt.current)
	}
}

func TestResolve_Errors(t *testing.T) {
	g := linear(t)

	for _, tc := range []struct{ current, target string }{
		{"3c4f22db7a46", "+1"},
		{"2b4a8d3f1c90", "-3"},
		{"", "-1"},
		{"", "+x"},
		{"", "+0"},
		{"", "2b4"},
		{"", "ffff"},
	} {
		_, err := planner.Resolve(g, tc.current, tc.target)
		assert.ErrorIs(t, err, domain.ErrUnknownRevision, "%s from %q", tc.target, tc.current)
	}
}

func TestResolve_AmbiguousPrefix(t *testing.T) {
	g, err := graph.Build([]domain.Revision{{ID: "abcd1"}, {ID: "abcd2", ParentID: "abcd1"}})
	require.NoError(t, err)

	_, err = planner.Resolve(g, "", "abcd")
	var unknown *domain.UnknownRevisionError
	require.ErrorAs(t, err, &unknown)
	assert.Contains(t, unknown.Reason, "abcd1, abcd2")
}

func TestResolve_BranchedHead(t *testing.T) {
	g := tree(t)

	_, err := planner.Resolve(g, "", "head")
	var ambiguous *domain.AmbiguousHeadError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, []string{"r3", "b2"}, ambiguous.Heads)

	// Explicit ids and relative steps past the fork still work.
	got, err := planner.Resolve(g, "b1", "+1")
	require.NoError(t, err)
	assert.Equal(t, "b2", got)

	// At or above the fork a relative step needs a default head.
	for _, tc := range []struct{ current, target string }{
		{"r2", "+1"},
		{"r1", "+2"},
		{"", "+3"},
	} {
		_, err := planner.Resolve(g, tc.current, tc.target)
		require.ErrorAs(t, err, &ambiguous, "%s from %q", tc.target, tc.current)
		assert.Equal(t, []string{"r3", "b2"}, ambiguous.Heads)
	}

	g = tree(t, graph.WithDefaultHead("b1"))
	got, err = planner.Resolve(g, "", "head")
	require.NoError(t, err)
	assert.Equal(t, "b2", got, "the default head is followed down to its leaf")

	got, err = planner.Resolve(g, "r1", "+2")
	require.NoError(t, err)
	assert.Equal(t, "b1", got)

	// r3 lies off the default branch but has a single leaf below it.
	got, err = planner.Resolve(g, "r3", "+1")
	var unknown *domain.UnknownRevisionError
	require.ErrorAs(t, err, &unknown)
	assert.Empty(t, got)
}

func TestHead_EmptyGraph(t *testing.T) {
	g, err := graph.Build(nil)
	require.NoError(t, err)
	head, err := planner.Head(g)
	require.NoError(t, err)
	assert.Equal(t, domain.BaseRevision, head)
}
