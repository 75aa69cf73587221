package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is. Each typed error below matches one of them.
var (
	ErrGraphIntegrity      = errors.New("revision graph integrity violated")
	ErrUnknownRevision     = errors.New("unknown revision")
	ErrAmbiguousHead       = errors.New("ambiguous head revision")
	ErrMigrationInProgress = errors.New("migration in progress")
	ErrStepExecution       = errors.New("migration step failed")

	// ErrWrongDirection is returned by Upgrade or Downgrade when the target lies the other way.
	ErrWrongDirection = errors.New("target is in the wrong direction")
)

// GraphIntegrityError is returned when a revision set cannot form a valid graph.
// It is raised before the store is touched.
type GraphIntegrityError struct {
	Invalid    []string // empty ids or revisions that name themselves as parent
	Duplicates []string // ids defined more than once
	Dangling   []string // ids whose parent does not exist
	Cycles     []string // ids that never reach a root
	Roots      []string // set when the graph has more than one root
	Defaults   []string // set when more than one revision is marked default
}

func (e *GraphIntegrityError) Error() string {
	var parts []string
	add := func(label string, ids []string) {
		if len(ids) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", label, strings.Join(ids, ", ")))
		}
	}
	add("invalid ids", e.Invalid)
	add("duplicate ids", e.Duplicates)
	add("dangling parents", e.Dangling)
	add("cycles", e.Cycles)
	add("multiple roots", e.Roots)
	add("multiple defaults", e.Defaults)
	return fmt.Sprintf("%s (%s)", ErrGraphIntegrity, strings.Join(parts, "; "))
}

func (e *GraphIntegrityError) Is(target error) bool { return target == ErrGraphIntegrity }

// HasProblems reports whether any check failed.
func (e *GraphIntegrityError) HasProblems() bool {
	return len(e.Invalid)+len(e.Duplicates)+len(e.Dangling)+len(e.Cycles)+len(e.Roots)+len(e.Defaults) > 0
}

// UnknownRevisionError is returned when the marker or a request references
// a revision the loaded graph does not know.
type UnknownRevisionError struct {
	ID     string
	Source string // "marker", "target", "from"
	Reason string
}

func (e *UnknownRevisionError) Error() string {
	msg := fmt.Sprintf("%s %q (%s)", ErrUnknownRevision, e.ID, e.Source)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *UnknownRevisionError) Is(target error) bool { return target == ErrUnknownRevision }

// AmbiguousHeadError is returned when "head" is requested on a branched graph
// without a designated default.
type AmbiguousHeadError struct {
	Heads []string
}

func (e *AmbiguousHeadError) Error() string {
	return fmt.Sprintf("%s: %s (designate a default head or pass an explicit target)",
		ErrAmbiguousHead, strings.Join(e.Heads, ", "))
}

func (e *AmbiguousHeadError) Is(target error) bool { return target == ErrAmbiguousHead }

// MigrationInProgressError is returned when another process holds the migration lock.
// Callers may retry.
type MigrationInProgressError struct {
	Key   string
	Cause error
}

func (e *MigrationInProgressError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (lock %q): %v", ErrMigrationInProgress, e.Key, e.Cause)
	}
	return fmt.Sprintf("%s (lock %q)", ErrMigrationInProgress, e.Key)
}

func (e *MigrationInProgressError) Is(target error) bool { return target == ErrMigrationInProgress }

func (e *MigrationInProgressError) Unwrap() error { return e.Cause }

// StepExecutionError is returned when a step's operation, marker write or commit fails.
// The store is left at the last successfully committed step.
type StepExecutionError struct {
	RevisionID string
	Direction  Direction
	Cause      error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrStepExecution, e.Direction, e.RevisionID, e.Cause)
}

func (e *StepExecutionError) Is(target error) bool { return target == ErrStepExecution }

func (e *StepExecutionError) Unwrap() error { return e.Cause }
