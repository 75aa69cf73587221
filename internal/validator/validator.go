package validator

import (
	"sort"

	"github.com/aretw0/strata/pkg/domain"
)

// ValidateRevisions checks that a revision set can form a single tree:
// ids are unique and non-empty, every parent resolves, no revision is part of
// a cycle, there is exactly one root and at most one default head.
// It returns a *domain.GraphIntegrityError listing every offending id, or nil.
func ValidateRevisions(revs []domain.Revision) error {
	report := &domain.GraphIntegrityError{}

	parents := make(map[string]string, len(revs))
	seen := make(map[string]int, len(revs))
	var roots, defaults []string

	for _, r := range revs {
		if r.ID == "" || r.ID == r.ParentID {
			report.Invalid = append(report.Invalid, domain.DisplayID(r.ID))
			continue
		}
		seen[r.ID]++
		if seen[r.ID] == 2 {
			report.Duplicates = append(report.Duplicates, r.ID)
		}
		parents[r.ID] = r.ParentID
		if r.ParentID == domain.BaseRevision {
			roots = append(roots, r.ID)
		}
		if r.Default {
			defaults = append(defaults, r.ID)
		}
	}

	for id, parent := range parents {
		if parent != domain.BaseRevision {
			if _, ok := parents[parent]; !ok {
				report.Dangling = append(report.Dangling, id)
			}
		}
	}

	report.Cycles = findCycles(parents)

	if len(roots) > 1 {
		report.Roots = roots
	}
	if len(defaults) > 1 {
		report.Defaults = defaults
	}

	if !report.HasProblems() {
		return nil
	}
	for _, ids := range [][]string{report.Invalid, report.Duplicates, report.Dangling, report.Cycles, report.Roots, report.Defaults} {
		sort.Strings(ids)
	}
	return report
}

// findCycles crawls every revision up its parent chain and returns the ids
// that sit on a cycle. Chains that end at the base or at a missing parent are fine.
func findCycles(parents map[string]string) []string {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(parents))
	onCycle := make(map[string]bool)

	for start := range parents {
		if state[start] == done {
			continue
		}
		var trail []string
		current := start
		for {
			if _, known := parents[current]; !known || current == domain.BaseRevision {
				break
			}
			if state[current] == done {
				break
			}
			if state[current] == visiting {
				// Everything on the trail from the first occurrence of current loops.
				for i := len(trail) - 1; i >= 0; i-- {
					onCycle[trail[i]] = true
					if trail[i] == current {
						break
					}
				}
				break
			}
			state[current] = visiting
			trail = append(trail, current)
			current = parents[current]
		}
		for _, id := range trail {
			state[id] = done
		}
	}

	var cycles []string
	for id := range onCycle {
		cycles = append(cycles, id)
	}
	return cycles
}
