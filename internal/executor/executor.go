// Package executor applies migration plans to a store, one transaction per step.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/strata/internal/logging"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
)

// Executor runs plan steps strictly in order.
type Executor struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	now    func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(x *Executor) {
		if logger != nil {
			x.logger = logger
		}
	}
}

// WithLifecycleHooks registers step observers.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(x *Executor) {
		x.hooks = hooks
	}
}

// New creates an Executor.
func New(opts ...Option) *Executor {
	x := &Executor{
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Apply runs plan against store with a default Executor.
func Apply(ctx context.Context, store ports.Store, plan *domain.Plan, guards ...Guard) (*domain.ExecutionReport, error) {
	return New().Apply(ctx, store, plan, guards...)
}

// Guard is checked before every step. An error stops the run before the step starts.
type Guard func(ctx context.Context) error

// Apply executes every step of plan in its own transaction.
//
// Each step runs its operation, writes the resulting marker and commits.
// The first failure rolls that step back and stops the run: the store stays at
// the last committed step, the remaining steps are reported as not attempted
// and a *domain.StepExecutionError is returned. Cancelling ctx never
// interrupts a running step; it stops the run before the next one, as does a
// failing guard, whose error is returned wrapped.
func (x *Executor) Apply(ctx context.Context, store ports.Store, plan *domain.Plan, guards ...Guard) (*domain.ExecutionReport, error) {
	report := domain.NewReport(plan)
	total := len(plan.Steps)

	for i, step := range plan.Steps {
		log := x.logger.With("revision", step.Revision.ID, "direction", step.Direction)

		if err := ctx.Err(); err != nil {
			log.Warn("migration interrupted", "remaining", total-i)
			return report, fmt.Errorf("migration interrupted before %s %s: %w", step.Direction, step.Revision.ID, err)
		}
		for _, guard := range guards {
			if err := guard(ctx); err != nil {
				log.Warn("migration stopped", "remaining", total-i, "err", err)
				return report, fmt.Errorf("migration stopped before %s %s: %w", step.Direction, step.Revision.ID, err)
			}
		}

		x.emit(ctx, domain.EventStepStart, step, i, total, 0, nil)
		log.Debug("applying step", "index", i+1, "total", total)

		start := x.now()
		err := runStep(context.WithoutCancel(ctx), store, step)
		elapsed := x.now().Sub(start)

		result := &report.Steps[i]
		result.Duration = elapsed
		x.emit(ctx, domain.EventStepFinish, step, i, total, elapsed, err)

		if err != nil {
			result.Status = domain.StepFailed
			result.Err = err
			log.Error("step failed", "err", err)
			return report, &domain.StepExecutionError{
				RevisionID: step.Revision.ID,
				Direction:  step.Direction,
				Cause:      err,
			}
		}

		result.Status = domain.StepApplied
		report.To = step.ResultID()
		log.Info("step applied", "marker", domain.DisplayID(report.To), "duration", elapsed)
	}
	return report, nil
}

// runStep applies a single step atomically.
func runStep(ctx context.Context, store ports.Store, step domain.Step) (err error) {
	tx, err := store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			// Rollback is a no-op after a successful Commit.
			_ = tx.Rollback(ctx)
		}
	}()

	if err := runOperation(ctx, tx, step); err != nil {
		return err
	}
	if err := tx.WriteMarker(ctx, step.ResultID()); err != nil {
		return fmt.Errorf("failed to write marker: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// runOperation turns a panicking operation into an error so the step rolls back.
func runOperation(ctx context.Context, tx ports.Tx, step domain.Step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()
	return step.Revision.Operation(step.Direction)(ctx, tx)
}

func (x *Executor) emit(ctx context.Context, typ domain.EventType, step domain.Step, index, total int, d time.Duration, err error) {
	hook := x.hooks.OnStepStart
	if typ == domain.EventStepFinish {
		hook = x.hooks.OnStepFinish
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.StepEvent{
		EventBase:  domain.EventBase{Timestamp: x.now(), Type: typ},
		RevisionID: step.Revision.ID,
		Direction:  step.Direction,
		Index:      index,
		Total:      total,
		Duration:   d,
		Err:        err,
	})
}
