// Package logging builds the slog loggers used by the CLI and the engine.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/strata/pkg/domain"
)

// revisionKeys hold revision ids; an empty value there means the base.
var revisionKeys = map[string]bool{
	"revision": true,
	"from":     true,
	"to":       true,
	"target":   true,
	"marker":   true,
}

// New creates a configured application logger.
// It writes to Stderr so Stdout stays clean for reports.
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return NewWriter(os.Stderr, level)
}

// NewWriter is New with an explicit destination.
func NewWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}))
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	if revisionKeys[a.Key] && a.Value.Kind() == slog.KindString && a.Value.String() == domain.BaseRevision {
		a.Value = slog.StringValue(domain.DisplayID(domain.BaseRevision))
	}
	return a
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
