// Package tui renders migration results for terminals and plain pipes.
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Printer writes human readable output. Colour and markdown rendering are
// enabled only when the destination is a terminal.
type Printer struct {
	out      io.Writer
	profile  termenv.Profile
	markdown func(string) (string, error)
}

// NewPrinter inspects w and picks the richest output it supports.
func NewPrinter(w io.Writer) *Printer {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return &Printer{out: w, profile: termenv.EnvColorProfile(), markdown: NewRenderer()}
	}
	return NewPlainPrinter(w)
}

// NewPlainPrinter writes without colour and prints markdown as-is.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{out: w, profile: termenv.Ascii, markdown: plainMarkdown}
}

// Profile returns the colour profile in use.
func (p *Printer) Profile() termenv.Profile { return p.profile }

func (p *Printer) color(s, hex string) string {
	return p.profile.String(s).Foreground(p.profile.Color(hex)).String()
}

func (p *Printer) ok(s string) string   { return p.color(s, "#22c55e") }
func (p *Printer) warn(s string) string { return p.color(s, "#eab308") }
func (p *Printer) fail(s string) string { return p.color(s, "#ef4444") }

// Status prints where the store stands.
func (p *Printer) Status(st *domain.Status) {
	fmt.Fprintf(p.out, "Current: %s\n", domain.DisplayID(st.Current))
	heads := make([]string, len(st.Heads))
	for i, h := range st.Heads {
		heads[i] = domain.DisplayID(h)
	}
	fmt.Fprintf(p.out, "Heads:   %s\n", strings.Join(heads, ", "))

	switch {
	case st.UpToDate():
		fmt.Fprintln(p.out, p.ok("Up to date."))
	case st.Head == "":
		fmt.Fprintln(p.out, p.warn("Multiple heads and no default; choose a target explicitly."))
	default:
		fmt.Fprintln(p.out, p.warn(fmt.Sprintf("%d pending revision(s) to %s.", st.Pending, st.Head)))
	}
}

// Report prints the outcome of every step of a run.
func (p *Printer) Report(r *domain.ExecutionReport) {
	if r.Empty() {
		fmt.Fprintf(p.out, "Nothing to do, already at %s.\n", domain.DisplayID(r.From))
		return
	}
	for _, s := range r.Steps {
		var mark string
		switch s.Status {
		case domain.StepApplied:
			mark = p.ok("✓")
		case domain.StepFailed:
			mark = p.fail("✗")
		default:
			mark = p.warn("·")
		}
		line := fmt.Sprintf("%s %-4s %s", mark, s.Direction, s.RevisionID)
		if s.Label != "" {
			line += " " + s.Label
		}
		if s.Status == domain.StepApplied {
			line += fmt.Sprintf(" (%s)", s.Duration.Round(1e6))
		}
		if s.Err != nil {
			line += ": " + s.Err.Error()
		}
		fmt.Fprintln(p.out, line)
	}
	fmt.Fprintf(p.out, "Now at %s.\n", domain.DisplayID(r.To))
}

// Plan prints the steps a migration would run without running them.
func (p *Printer) Plan(plan *domain.Plan) {
	if plan.Empty() {
		fmt.Fprintf(p.out, "Nothing to do, already at %s.\n", domain.DisplayID(plan.From))
		return
	}
	fmt.Fprintf(p.out, "%s -> %s\n", domain.DisplayID(plan.From), domain.DisplayID(plan.To))
	for i, s := range plan.Steps {
		fmt.Fprintf(p.out, "%3d. %-4s %s %s\n", i+1, s.Direction, s.Revision.ID, s.Revision.Label)
	}
}

// History prints the revision list, newest first, as a markdown table.
func (p *Printer) History(entries []domain.HistoryEntry) error {
	rendered, err := p.markdown(HistoryMarkdown(entries))
	if err != nil {
		return fmt.Errorf("render history: %w", err)
	}
	_, err = io.WriteString(p.out, rendered)
	return err
}

// HistoryMarkdown renders history entries as a markdown table.
func HistoryMarkdown(entries []domain.HistoryEntry) string {
	var sb strings.Builder
	sb.WriteString("| Revision | Parent | Label | Created | State |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, e := range entries {
		var flags []string
		if e.Current {
			flags = append(flags, "current")
		} else if e.Applied {
			flags = append(flags, "applied")
		}
		if e.Head {
			flags = append(flags, "head")
		}
		if e.Revision.Default {
			flags = append(flags, "default")
		}

		created := ""
		if !e.Revision.Created.IsZero() {
			created = e.Revision.Created.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
			e.Revision.ID,
			domain.DisplayID(e.Revision.ParentID),
			strings.ReplaceAll(e.Revision.Label, "|", `\|`),
			created,
			strings.Join(flags, ", "))
	}
	return sb.String()
}
