// Package inspector reads the Applied State Marker of a store.
package inspector

import (
	"context"
	"fmt"

	"github.com/aretw0/strata/internal/graph"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
)

// MarkerReader is the part of a store the inspector needs.
type MarkerReader interface {
	ReadMarker(ctx context.Context) (string, error)
}

var _ MarkerReader = (ports.Store)(nil)

// Current returns the revision id the store reflects.
// A marker the graph does not know fails with *domain.UnknownRevisionError,
// which usually means the store was migrated by a newer release.
func Current(ctx context.Context, store MarkerReader, g *graph.Graph) (string, error) {
	marker, err := store.ReadMarker(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read marker: %w", err)
	}
	if !g.Has(marker) {
		return "", &domain.UnknownRevisionError{
			ID:     marker,
			Source: "marker",
			Reason: "the store was migrated by revisions this build does not define",
		}
	}
	return marker, nil
}
