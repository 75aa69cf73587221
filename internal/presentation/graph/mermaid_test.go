package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/strata/internal/presentation/graph"
	"github.com/aretw0/strata/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		revs     []*domain.Revision
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Root And Default Head Shapes",
			revs: []*domain.Revision{
				{ID: "9ba30ab3b2b4"},
				{ID: "3c4f22db7a46", ParentID: "9ba30ab3b2b4", Default: true},
			},
			contains: []string{
				`rev_9ba30ab3b2b4(("9ba30ab3b2b4"))`,
				`rev_3c4f22db7a46[["3c4f22db7a46"]]`,
				"rev_9ba30ab3b2b4 --> rev_3c4f22db7a46",
			},
		},
		{
			name: "Labels Are Escaped",
			revs: []*domain.Revision{
				{ID: "r1", Label: `add "finalized_at"`},
			},
			contains: []string{`rev_r1(("r1 <br/> add 'finalized_at'"))`},
		},
		{
			name: "ID Sanitization",
			revs: []*domain.Revision{
				{ID: "end"},
				{ID: "feature-x.1", ParentID: "end"},
			},
			contains: []string{
				`rev_feature_x_1["feature-x.1"]`,
				"rev_end --> rev_feature_x_1",
			},
		},
		{
			name: "Overlay",
			revs: []*domain.Revision{
				{ID: "r1"},
				{ID: "r2", ParentID: "r1"},
			},
			overlay: &graph.GraphOverlay{Applied: []string{"r1", "r1"}, Current: "r1"},
			contains: []string{
				"class rev_r1 applied;",
				"class rev_r1 current;",
			},
			excludes: []string{"class rev_r2"},
		},
		{
			name:     "Overlay At Base",
			revs:     []*domain.Revision{{ID: "r1"}},
			overlay:  &graph.GraphOverlay{},
			contains: []string{"classDef current"},
			excludes: []string{"class rev_ current;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.revs, tt.overlay)
			if !strings.HasPrefix(got, "graph TD\n") {
				t.Errorf("GenerateMermaid() missing header:\n%v", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, unwanted)
				}
			}
		})
	}
}
