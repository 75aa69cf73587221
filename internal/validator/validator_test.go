package validator

import (
	"errors"
	"testing"

	"github.com/aretw0/strata/pkg/domain"
)

func rev(id, parent string) domain.Revision {
	return domain.Revision{ID: id, ParentID: parent}
}

func TestValidateRevisions(t *testing.T) {
	// Scenario A: Valid branched tree
	// r1 -> r2 -> r3
	//          \-> r4
	valid := []domain.Revision{rev("r3", "r2"), rev("r1", ""), rev("r2", "r1"), rev("r4", "r2")}
	if err := ValidateRevisions(valid); err != nil {
		t.Errorf("Scenario A (Valid) failed: %v", err)
	}

	// Empty sets are valid: nothing to migrate.
	if err := ValidateRevisions(nil); err != nil {
		t.Errorf("empty set should be valid, got %v", err)
	}

	tests := []struct {
		name  string
		revs  []domain.Revision
		check func(*domain.GraphIntegrityError) []string
		want  []string
	}{
		{
			name:  "Dangling parent",
			revs:  []domain.Revision{rev("r1", ""), rev("r2", "ghost")},
			check: func(e *domain.GraphIntegrityError) []string { return e.Dangling },
			want:  []string{"r2"},
		},
		{
			name:  "Duplicate id",
			revs:  []domain.Revision{rev("r1", ""), rev("r2", "r1"), rev("r2", "r1")},
			check: func(e *domain.GraphIntegrityError) []string { return e.Duplicates },
			want:  []string{"r2"},
		},
		{
			name:  "Cycle",
			revs:  []domain.Revision{rev("r1", ""), rev("a", "c"), rev("b", "a"), rev("c", "b"), rev("d", "c")},
			check: func(e *domain.GraphIntegrityError) []string { return e.Cycles },
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "Multiple roots",
			revs:  []domain.Revision{rev("r1", ""), rev("x1", "")},
			check: func(e *domain.GraphIntegrityError) []string { return e.Roots },
			want:  []string{"r1", "x1"},
		},
		{
			name:  "Self parent",
			revs:  []domain.Revision{rev("r1", ""), rev("r2", "r2")},
			check: func(e *domain.GraphIntegrityError) []string { return e.Invalid },
			want:  []string{"r2"},
		},
		{
			name: "Multiple defaults",
			revs: []domain.Revision{
				rev("r1", ""),
				{ID: "a", ParentID: "r1", Default: true},
				{ID: "b", ParentID: "r1", Default: true},
			},
			check: func(e *domain.GraphIntegrityError) []string { return e.Defaults },
			want:  []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRevisions(tt.revs)
			if err == nil {
				t.Fatal("expected integrity error, got nil")
			}
			if !errors.Is(err, domain.ErrGraphIntegrity) {
				t.Fatalf("expected ErrGraphIntegrity, got %v", err)
			}
			var integrity *domain.GraphIntegrityError
			if !errors.As(err, &integrity) {
				t.Fatalf("expected *GraphIntegrityError, got %T", err)
			}
			got := tt.check(integrity)
			if len(got) != len(tt.want) {
				t.Fatalf("expected offenders %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("expected offenders %v, got %v", tt.want, got)
				}
			}
		})
	}
}
