package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/strata/pkg/domain"
)

// GraphOverlay contains store state to visualize on the graph.
type GraphOverlay struct {
	Applied []string
	Current string
}

// GenerateMermaid produces a Mermaid flowchart of a revision graph, parents on top.
// Shapes:
// - Root: ((Circle))
// - Default head: [[Subroutine]]
// - Default: [Rectangle]
// Overlay styles (applied/current) are added when an overlay is provided.
func GenerateMermaid(revs []*domain.Revision, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, rev := range revs {
		safeID := sanitizeMermaidID(rev.ID)

		opener, closer := "[", "]"
		switch {
		case rev.IsRoot():
			opener, closer = "((", "))"
		case rev.Default:
			opener, closer = "[[", "]]"
		}

		text := rev.ID
		if rev.Label != "" {
			text += " <br/> " + strings.ReplaceAll(rev.Label, "\"", "'")
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, text, closer))

		if !rev.IsRoot() {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", sanitizeMermaidID(rev.ParentID), safeID))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast regardless of theme.
		sb.WriteString("    classDef applied fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Applied {
			safeID := sanitizeMermaidID(id)
			if id != domain.BaseRevision && !seen[safeID] {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s applied;\n", safeID))
			}
		}
		if overlay.Current != domain.BaseRevision {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.Current)))
		}
	}

	return sb.String()
}

// sanitizeMermaidID prefixes ids so hex ids starting with digits and
// reserved words like "end" stay valid node names.
func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return "rev_" + r.Replace(id)
}
