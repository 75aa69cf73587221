package ports

import (
	"context"

	"github.com/aretw0/strata/pkg/domain"
)

// Store defines the persistent target of migrations.
// It owns the Applied State Marker and the live schema.
type Store interface {
	// ReadMarker returns the id of the revision the store currently reflects,
	// or domain.BaseRevision when nothing has been applied.
	ReadMarker(ctx context.Context) (string, error)

	// Begin opens a transaction scoped to a single migration step.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a scoped transaction against a Store.
// Schema changes and the marker write become visible together on Commit,
// or not at all.
type Tx interface {
	domain.Schema

	// WriteMarker records the revision id the schema reflects once committed.
	WriteMarker(ctx context.Context, id string) error

	// Commit makes the transaction durable.
	Commit(ctx context.Context) error

	// Rollback discards the transaction. It is a no-op after Commit.
	Rollback(ctx context.Context) error
}
