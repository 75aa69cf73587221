package domain

import (
	"time"
)

// Direction tells whether a step applies or reverts a revision.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Step is one entry of a migration plan.
type Step struct {
	Revision  *Revision
	Direction Direction
}

// ResultID is the marker value once the step has been committed.
func (s Step) ResultID() string {
	if s.Direction == DirectionUp {
		return s.Revision.ID
	}
	return s.Revision.ParentID
}

// Plan is the ordered list of steps moving a store from one revision to another.
// Plans are transient and computed per request.
type Plan struct {
	From  string
	To    string
	Steps []Step
}

// Empty reports whether the plan has nothing to do.
func (p *Plan) Empty() bool {
	return p == nil || len(p.Steps) == 0
}

// StepStatus is the outcome of a step in an ExecutionReport.
type StepStatus string

const (
	StepApplied      StepStatus = "applied"
	StepFailed       StepStatus = "failed"
	StepNotAttempted StepStatus = "not_attempted"
)

// StepResult records what happened to a single plan step.
type StepResult struct {
	RevisionID string        `json:"revision_id"`
	Label      string        `json:"label,omitempty"`
	Direction  Direction     `json:"direction"`
	Status     StepStatus    `json:"status"`
	Duration   time.Duration `json:"duration"`
	Err        error         `json:"-"`
}

// ExecutionReport describes a migration run.
type ExecutionReport struct {
	// From is the marker read before the run.
	From string `json:"from"`
	// Target is the resolved revision the run aimed for.
	Target string `json:"target"`
	// To is the marker after the run (equal to Target on success).
	To    string       `json:"to"`
	Steps []StepResult `json:"steps"`
}

// NewReport prepares a report for a plan with every step not yet attempted.
func NewReport(plan *Plan) *ExecutionReport {
	r := &ExecutionReport{From: plan.From, Target: plan.To, To: plan.From}
	for _, s := range plan.Steps {
		r.Steps = append(r.Steps, StepResult{
			RevisionID: s.Revision.ID,
			Label:      s.Revision.Label,
			Direction:  s.Direction,
			Status:     StepNotAttempted,
		})
	}
	return r
}

// Empty reports whether the run had no steps at all.
func (r *ExecutionReport) Empty() bool {
	return r == nil || len(r.Steps) == 0
}

// Applied returns the steps that were committed.
func (r *ExecutionReport) Applied() []StepResult {
	return r.filter(StepApplied)
}

// NotAttempted returns the steps that never ran.
func (r *ExecutionReport) NotAttempted() []StepResult {
	return r.filter(StepNotAttempted)
}

// Failed returns the failed step, or nil.
func (r *ExecutionReport) Failed() *StepResult {
	if r == nil {
		return nil
	}
	for i := range r.Steps {
		if r.Steps[i].Status == StepFailed {
			return &r.Steps[i]
		}
	}
	return nil
}

func (r *ExecutionReport) filter(status StepStatus) []StepResult {
	if r == nil {
		return nil
	}
	var out []StepResult
	for _, s := range r.Steps {
		if s.Status == status {
			out = append(out, s)
		}
	}
	return out
}
