package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepStart  EventType = "step_start"
	EventStepFinish EventType = "step_finish"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StepEvent describes a plan step entering or leaving execution.
type StepEvent struct {
	EventBase
	RevisionID string        `json:"revision_id"`
	Direction  Direction     `json:"direction"`
	Index      int           `json:"index"`
	Total      int           `json:"total"`
	Duration   time.Duration `json:"duration,omitempty"`
	Err        error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepStart  func(context.Context, *StepEvent)
	OnStepFinish func(context.Context, *StepEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepStart:  chain(h.OnStepStart, other.OnStepStart),
		OnStepFinish: chain(h.OnStepFinish, other.OnStepFinish),
	}
}

func chain(a, b func(context.Context, *StepEvent)) func(context.Context, *StepEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *StepEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
