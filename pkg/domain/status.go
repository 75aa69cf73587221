package domain

// Status summarizes where a store stands relative to the revision graph.
type Status struct {
	// Current is the store's marker.
	Current string `json:"current"`
	// Heads lists every leaf of the graph, oldest first.
	Heads []string `json:"heads"`
	// Head is the revision "head" resolves to. Empty when ambiguous.
	Head string `json:"head,omitempty"`
	// Pending counts the steps an upgrade to Head would run.
	Pending int `json:"pending"`
	// Applied counts the revisions at or below Current.
	Applied int `json:"applied"`
}

// UpToDate reports whether the store is at its resolved head.
func (s *Status) UpToDate() bool {
	if len(s.Heads) == 0 {
		return s.Current == BaseRevision
	}
	return s.Head != "" && s.Pending == 0
}

// HistoryEntry is one line of a revision history listing.
type HistoryEntry struct {
	Revision *Revision `json:"revision"`
	// Applied is true when the revision is at or below the store's marker.
	Applied bool `json:"applied"`
	// Current is true for the revision the marker points at.
	Current bool `json:"current"`
	// Head is true for leaves of the graph.
	Head bool `json:"head"`
}
