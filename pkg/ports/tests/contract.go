package tests

import (
	"context"
	"testing"

	"github.com/aretw0/strata/pkg/ports"
)

// RevisionSourceContractTest is a reusable test suite that verifies if an adapter complies with ports.RevisionSource.
// want maps each expected revision id to its parent id.
func RevisionSourceContractTest(t *testing.T, source ports.RevisionSource, want map[string]string) {
	t.Helper()

	revs, err := source.Revisions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error listing revisions: %v", err)
	}

	t.Run("Revisions_Count", func(t *testing.T) {
		if len(revs) != len(want) {
			t.Errorf("expected %d revisions, got %d", len(want), len(revs))
		}
	})

	t.Run("Revisions_Parents", func(t *testing.T) {
		for _, r := range revs {
			parent, ok := want[r.ID]
			if !ok {
				t.Errorf("unexpected revision %s", r.ID)
				continue
			}
			if r.ParentID != parent {
				t.Errorf("parent mismatch for %s. got %q, want %q", r.ID, r.ParentID, parent)
			}
		}
	})

	t.Run("Revisions_Operations", func(t *testing.T) {
		for _, r := range revs {
			if r.Forward == nil && r.Up == nil {
				t.Errorf("revision %s has no forward operation", r.ID)
			}
		}
	})
}
