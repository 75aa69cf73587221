package inspector_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/strata/internal/graph"
	"github.com/aretw0/strata/internal/inspector"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type markerFunc func(ctx context.Context) (string, error)

func (f markerFunc) ReadMarker(ctx context.Context) (string, error) { return f(ctx) }

func fixed(id string) markerFunc {
	return func(context.Context) (string, error) { return id, nil }
}

func TestCurrent(t *testing.T) {
	ctx := context.Background()
	g, err := graph.Build([]domain.Revision{{ID: "r1"}, {ID: "r2", ParentID: "r1"}})
	require.NoError(t, err)

	got, err := inspector.Current(ctx, fixed("r2"), g)
	require.NoError(t, err)
	assert.Equal(t, "r2", got)

	got, err = inspector.Current(ctx, fixed(domain.BaseRevision), g)
	require.NoError(t, err)
	assert.Equal(t, domain.BaseRevision, got)

	_, err = inspector.Current(ctx, fixed("r9"), g)
	var unknown *domain.UnknownRevisionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "r9", unknown.ID)
	assert.Equal(t, "marker", unknown.Source)

	boom := errors.New("connection refused")
	_, err = inspector.Current(ctx, markerFunc(func(context.Context) (string, error) { return "", boom }), g)
	assert.ErrorIs(t, err, boom)
}
