package schema

import (
	"errors"
	"fmt"
)

// Sentinels wrapped by ObjectError.
var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
	ErrInUse    = errors.New("still referenced")
)

// ObjectError reports a schema operation rejected by the catalog.
type ObjectError struct {
	Kind   string // "table", "column", "constraint"
	Name   string // qualified object name, e.g. "run.finalized_at"
	Reason error  // one of the sentinels above
	Detail string
}

func (e *ObjectError) Error() string {
	msg := fmt.Sprintf("%s %q %s", e.Kind, e.Name, e.Reason)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *ObjectError) Unwrap() error { return e.Reason }

func notFound(kind, name string) error {
	return &ObjectError{Kind: kind, Name: name, Reason: ErrNotFound}
}

func exists(kind, name string) error {
	return &ObjectError{Kind: kind, Name: name, Reason: ErrExists}
}

func inUse(kind, name, by string) error {
	return &ObjectError{Kind: kind, Name: name, Reason: ErrInUse, Detail: "by " + by}
}
