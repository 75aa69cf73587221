package compiler_test

import (
	"testing"
	"time"

	"github.com/aretw0/strata/internal/compiler"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Ops(t *testing.T) {
	p := compiler.NewParser()

	ops, err := p.Ops([]any{
		map[string]any{
			"op":     "add_column",
			"table":  "run",
			"column": map[string]any{"name": "finalized_at", "type": "datetime", "nullable": true},
		},
		map[string]any{
			"op":    "add_foreign_key",
			"table": "note",
			"foreign_key": map[string]any{
				"name": "fk_experiment_note", "columns": []any{"experiment_id"},
				"ref_table": "experiment", "ref_columns": []any{"id"},
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, domain.OpAddColumn, ops[0].Kind)
	assert.Equal(t, "finalized_at", ops[0].Column.Name)
	assert.True(t, ops[0].Column.Nullable)
	assert.Equal(t, []string{"experiment_id"}, ops[1].ForeignKey.Columns)

	none, err := p.Ops(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestParser_OpsRejectsBadInput(t *testing.T) {
	p := compiler.NewParser()

	_, err := p.Ops([]any{map[string]any{"op": "add_column", "table": "run", "colum": map[string]any{}}})
	assert.Error(t, err, "unknown keys are rejected")

	_, err = p.Ops([]any{map[string]any{"op": "rename_table", "table": "run"}})
	assert.ErrorContains(t, err, "unknown op")

	_, err = p.Ops([]any{"drop everything"})
	assert.Error(t, err)
}

func TestParser_Created(t *testing.T) {
	p := compiler.NewParser()

	got, err := p.Created("2024-01-05 10:13:02.116812")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, 116812000, got.Nanosecond())

	got, err = p.Created("2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, time.January, got.Month())

	got, err = p.Created(nil)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = p.Created("yesterday")
	assert.Error(t, err)
	_, err = p.Created(42)
	assert.Error(t, err)
}

func TestParser_Label(t *testing.T) {
	p := compiler.NewParser()
	assert.Equal(t, "explicit", p.Label(" explicit ", "# body"))
	assert.Equal(t, "run end time", p.Label("", "\n# run end time\n\nmore"))
	assert.Empty(t, p.Label("", ""))
}
