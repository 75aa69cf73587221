package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/strata/internal/config"
	"github.com/aretw0/strata/internal/presentation/graph"
	"github.com/aretw0/strata/internal/presentation/tui"
	"github.com/aretw0/strata/pkg/domain"
)

// Up upgrades the store to target ("head" when empty).
func (s *Session) Up(ctx context.Context, target string) error {
	report, err := s.Engine.Upgrade(ctx, s.Store, target)
	return s.finish(report, err)
}

// Down downgrades the store to target (one step when empty).
func (s *Session) Down(ctx context.Context, target string) error {
	report, err := s.Engine.Downgrade(ctx, s.Store, target)
	return s.finish(report, err)
}

func (s *Session) finish(report *domain.ExecutionReport, err error) error {
	s.Metrics.ObserveRun(report, err)
	if report != nil {
		s.Printer.Report(report)
	}

	var stepErr *domain.StepExecutionError
	if errors.As(err, &stepErr) {
		return fmt.Errorf("migration stopped at %s %s: %w", stepErr.Direction, stepErr.RevisionID, err)
	}
	return err
}

// Plan prints the steps a migration to target would run.
func (s *Session) Plan(ctx context.Context, target string) error {
	plan, err := s.Engine.Plan(ctx, s.Store, target)
	if err != nil {
		return err
	}
	s.Printer.Plan(plan)
	return nil
}

// Status prints the store's position relative to the graph.
func (s *Session) Status(ctx context.Context) error {
	st, err := s.Engine.Status(ctx, s.Store)
	if err != nil {
		return err
	}
	s.Printer.Status(st)
	return nil
}

// History prints every revision, newest first.
func (s *Session) History(ctx context.Context) error {
	entries, err := s.Engine.History(ctx, s.Store)
	if err != nil {
		return err
	}
	return s.Printer.History(entries)
}

// Graph writes the revision graph as Mermaid, with the store state overlaid
// when a store is open.
func (s *Session) Graph(ctx context.Context, out io.Writer) error {
	var overlay *graph.GraphOverlay
	if s.Store != nil {
		entries, err := s.Engine.History(ctx, s.Store)
		if err != nil {
			return err
		}
		overlay = &graph.GraphOverlay{}
		for _, e := range entries {
			if e.Applied {
				overlay.Applied = append(overlay.Applied, e.Revision.ID)
			}
			if e.Current {
				overlay.Current = e.Revision.ID
			}
		}
	}
	_, err := io.WriteString(out, graph.GenerateMermaid(s.Engine.Revisions(), overlay))
	return err
}

// Heads writes the graph's heads, one per line.
func Heads(ctx context.Context, cfg config.Config, out io.Writer) error {
	s, err := openEngineOnly(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer s.Close()
	_, err = fmt.Fprintln(out, strings.Join(s.Engine.Heads(), "\n"))
	return err
}

// Validate loads the revisions and reports whether they form a valid graph.
func Validate(ctx context.Context, cfg config.Config, out io.Writer) error {
	s, err := openEngineOnly(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer s.Close()
	_, err = fmt.Fprintf(out, "%d revision(s), %d head(s). Graph is valid! ✅\n",
		len(s.Engine.Revisions()), len(s.Engine.Heads()))
	return err
}

// Graph writes the revision graph as Mermaid without touching any store.
func Graph(ctx context.Context, cfg config.Config, out io.Writer) error {
	s, err := openEngineOnly(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Graph(ctx, out)
}

// Banner prints the strata banner and version, coloured on terminals.
func Banner(out io.Writer, version string) {
	p := tui.NewPrinter(out)
	tui.PrintBanner(out, p.Profile())
	fmt.Fprintf(out, "strata version %s\n", strings.TrimSpace(version))
}
