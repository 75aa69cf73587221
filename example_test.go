package strata_test

import (
	"context"
	"fmt"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/domain"
)

// This example shows revisions defined in Go, applied to an in-memory store.
// This is useful for testing, embedded scenarios, or when you don't want to rely on the file system.
func Example() {
	ctx := context.Background()

	eng, err := strata.New("", strata.WithRevisions(
		domain.Revision{
			ID: "1975ea83b712", Label: "create run",
			Up: []domain.Op{{Kind: domain.OpCreateTable, Table: "run", Columns: []domain.Column{
				{Name: "id", Type: domain.TypeInteger, PrimaryKey: true, AutoIncrement: true},
			}}},
			Down: []domain.Op{{Kind: domain.OpDropTable, Table: "run"}},
		},
		domain.Revision{
			ID: "3c4f22db7a46", ParentID: "1975ea83b712", Label: "run end time",
			Up: []domain.Op{{Kind: domain.OpAddColumn, Table: "run", Column: &domain.Column{
				Name: "finalized_at", Type: domain.TypeDateTime, Nullable: true,
			}}},
			Down: []domain.Op{{Kind: domain.OpDropColumn, Table: "run", Name: "finalized_at"}},
		},
	))
	if err != nil {
		panic(err)
	}

	store := memory.NewStore()
	report, err := eng.Upgrade(ctx, store, "head")
	if err != nil {
		panic(err)
	}
	for _, step := range report.Applied() {
		fmt.Println(step.Direction, step.RevisionID, step.Label)
	}

	report, _ = eng.Migrate(ctx, store, "base")
	fmt.Println("now at", domain.DisplayID(report.To))

	// Output:
	// up 1975ea83b712 create run
	// up 3c4f22db7a46 run end time
	// now at <base>
}

func ExampleEngine_Plan() {
	ctx := context.Background()
	eng, _ := strata.New("", strata.WithRevisions(
		domain.Revision{ID: "r1"},
		domain.Revision{ID: "r2", ParentID: "r1"},
		domain.Revision{ID: "b1", ParentID: "r1", Label: "branch"},
	), strata.WithDefaultHead("r2"))

	store := memory.NewStore()
	_, _ = eng.Upgrade(ctx, store, "head")

	plan, _ := eng.Plan(ctx, store, "b1")
	for _, s := range plan.Steps {
		fmt.Println(s.Direction, s.Revision.ID)
	}

	// Output:
	// down r2
	// up b1
}
