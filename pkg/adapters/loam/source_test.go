package loam

import (
	"context"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/strata/internal/testutils"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_Contract(t *testing.T) {
	source, err := Open(testutils.RunTrackingDir(t, "../../.."))
	require.NoError(t, err)

	tests.RevisionSourceContractTest(t, source, map[string]string{
		"9ba30ab3b2b4": "",
		"3c4f22db7a46": "9ba30ab3b2b4",
		"b07e7b07c8ce": "3c4f22db7a46",
		"46b89d830ad8": "b07e7b07c8ce",
	})
}

func TestSource_DecodesRunTracking(t *testing.T) {
	source, err := Open(testutils.RunTrackingDir(t, "../../.."))
	require.NoError(t, err)

	revs, err := source.Revisions(context.Background())
	require.NoError(t, err)

	byID := make(map[string]domain.Revision)
	for _, r := range revs {
		byID[r.ID] = r
	}

	endTime := byID["3c4f22db7a46"]
	assert.Equal(t, "run end time", endTime.Label, "label falls back to the document heading")
	assert.Equal(t, 2021, endTime.Created.Year())
	require.Len(t, endTime.Up, 1)
	assert.Equal(t, domain.OpAddColumn, endTime.Up[0].Kind)
	assert.Equal(t, "finalized_at", endTime.Up[0].Column.Name)

	notes := byID["46b89d830ad8"]
	require.Len(t, notes.Down, 4)
	assert.Equal(t, domain.OpDropConstraint, notes.Down[1].Kind)
	assert.Equal(t, "fk_experiment_note", notes.Down[1].Name)
}

func TestSource_IDFromFileNameAndAliases(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, tmpDir, map[string]string{
		"first.md": `---
label: first
---`,
		"second.json": `{
  "down_revision": "first",
  "message": "second",
  "up": [{"op": "drop_table", "table": "t"}]
}`,
	})

	source := New(loam.NewTypedRepository[RevisionMetadata](repo))
	revs, err := source.Revisions(context.Background())
	require.NoError(t, err)
	require.Len(t, revs, 2)

	byID := make(map[string]domain.Revision)
	for _, r := range revs {
		byID[r.ID] = r
	}
	assert.Equal(t, "", byID["first"].ParentID)
	assert.Equal(t, "first", byID["second"].ParentID)
	assert.Equal(t, "second", byID["second"].Label)
}

func TestSource_RejectsInvalidOps(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, tmpDir, map[string]string{
		"broken.md": `---
id: broken
up:
  - op: add_column
    table: run
---`,
	})

	source := New(loam.NewTypedRepository[RevisionMetadata](repo))
	_, err := source.Revisions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column is required")
}

func TestSource_ConflictingParents(t *testing.T) {
	_, err := New(nil).decode("x.md", RevisionMetadata{ID: "x", Parent: "a", DownRevision: "b"}, "")
	assert.ErrorContains(t, err, "disagree")
}
