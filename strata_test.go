package strata_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/testutils"
	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FromRevisionDirectory(t *testing.T) {
	ctx := context.Background()
	eng, err := strata.New(testutils.RunTrackingDir(t, "."))
	require.NoError(t, err)
	assert.Equal(t, "revisions", eng.Name)
	assert.Equal(t, []string{"46b89d830ad8"}, eng.Heads())
	assert.Len(t, eng.Revisions(), 4)

	store := memory.NewStore()
	report, err := eng.Upgrade(ctx, store, "")
	require.NoError(t, err)
	assert.Equal(t, "46b89d830ad8", report.To)
	assert.Len(t, report.Applied(), 4)

	report, err = eng.Downgrade(ctx, store, "")
	require.NoError(t, err)
	assert.Equal(t, "b07e7b07c8ce", report.To, "downgrade defaults to one step")

	plan, err := eng.Plan(ctx, store, "3c4f")
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, domain.DirectionDown, plan.Steps[0].Direction)

	_, err = eng.Migrate(ctx, store, strata.TargetBase)
	require.NoError(t, err)
	assert.Empty(t, store.Schema().TableNames())
}

func TestNew_RequiresDirOrSource(t *testing.T) {
	_, err := strata.New("")
	assert.ErrorContains(t, err, "dir is required")
}

func TestNew_RejectsBrokenGraph(t *testing.T) {
	_, err := strata.New("", strata.WithRevisions(
		domain.Revision{ID: "r1"},
		domain.Revision{ID: "r2", ParentID: "ghost"},
	))
	assert.ErrorIs(t, err, domain.ErrGraphIntegrity)
}

func TestDefaultHead(t *testing.T) {
	ctx := context.Background()
	revs := []domain.Revision{
		{ID: "r1"},
		{ID: "main", ParentID: "r1"},
		{ID: "feature", ParentID: "r1"},
	}

	eng, err := strata.New("", strata.WithRevisions(revs...))
	require.NoError(t, err)
	_, err = eng.Upgrade(ctx, memory.NewStore(), "")
	assert.ErrorIs(t, err, domain.ErrAmbiguousHead)

	eng, err = strata.New("", strata.WithRevisions(revs...), strata.WithDefaultHead("feature"))
	require.NoError(t, err)
	report, err := eng.Upgrade(ctx, memory.NewStore(), "")
	require.NoError(t, err)
	assert.Equal(t, "feature", report.To)
}

func TestHooksAndStatus(t *testing.T) {
	ctx := context.Background()
	var started, finished []string

	b := dsl.New()
	b.Add("r1").CreateTable(dsl.Table("run", dsl.Col("id", domain.TypeInteger, dsl.PrimaryKey()))).
		Then("r2").AddColumn("run", dsl.Col("finalized_at", domain.TypeDateTime, dsl.Nullable()))

	eng, err := strata.New("",
		strata.WithSource(b.MustBuild()),
		strata.WithLifecycleHooks(domain.LifecycleHooks{
			OnStepStart: func(_ context.Context, e *domain.StepEvent) { started = append(started, e.RevisionID) },
		}),
		strata.WithLifecycleHooks(domain.LifecycleHooks{
			OnStepFinish: func(_ context.Context, e *domain.StepEvent) { finished = append(finished, e.RevisionID) },
		}),
	)
	require.NoError(t, err)

	store := memory.NewStore()
	st, err := eng.Status(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Pending)

	_, err = eng.Upgrade(ctx, store, "+1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, started)
	assert.Equal(t, []string{"r1"}, finished, "options chain hooks instead of replacing them")

	history, err := eng.History(ctx, store)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "r2", history[0].Revision.ID)
	assert.True(t, history[1].Current)
}

func TestFailedStepReport(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	eng, err := strata.New("", strata.WithRevisions(
		domain.Revision{ID: "r1"},
		domain.Revision{ID: "r2", ParentID: "r1", Forward: func(context.Context, domain.Schema) error { return boom }},
		domain.Revision{ID: "r3", ParentID: "r2"},
	))
	require.NoError(t, err)

	store := memory.NewStore()
	report, err := eng.Upgrade(ctx, store, "head")
	require.ErrorIs(t, err, boom)

	var stepErr *domain.StepExecutionError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "r2", stepErr.RevisionID)
	assert.Equal(t, "r1", report.To)
	assert.Equal(t, "r2", report.Failed().RevisionID)
	require.Len(t, report.NotAttempted(), 1)
	assert.True(t, strings.HasPrefix(strata.Version, "0."))
}
