// Package compiler turns loosely typed revision documents into domain values.
package compiler

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// createdLayouts are the timestamp formats accepted for a revision's creation date.
// The second one is the "Create Date" header written by Alembic.
var createdLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parser is responsible for converting raw document values into revision parts.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Ops decodes a list of op maps, as found under "up" or "down".
// Unknown keys are rejected so typos do not silently drop a change.
func (p *Parser) Ops(raw []any) ([]domain.Op, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ops := make([]domain.Op, 0, len(raw))
	for i, item := range raw {
		var op domain.Op
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &op,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(item); err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
		if err := op.Validate(); err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Created parses a creation timestamp. Empty values yield the zero time.
func (p *Parser) Created(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return time.Time{}, nil
		}
		for _, layout := range createdLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized created date %q", v)
	default:
		return time.Time{}, fmt.Errorf("created: expected string or timestamp, got %T", raw)
	}
}

// Label picks the human description of a revision: an explicit label first,
// then the first non-empty line of the document body.
func (p *Parser) Label(label, body string) string {
	if label = strings.TrimSpace(label); label != "" {
		return label
	}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line != "" {
			return line
		}
	}
	return ""
}
