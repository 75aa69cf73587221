package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/strata/internal/executor"
	"github.com/aretw0/strata/internal/graph"
	"github.com/aretw0/strata/internal/inspector"
	"github.com/aretw0/strata/internal/logging"
	"github.com/aretw0/strata/internal/planner"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
)

// ErrNoLocker is returned when neither the store nor the options provide a lock.
var ErrNoLocker = errors.New("store does not implement ports.DistributedLocker and no locker was configured")

// Engine services upgrade and downgrade requests against stores.
// It is safe for concurrent use; runs against the same store serialize on the lock.
type Engine struct {
	graph       *graph.Graph
	locker      ports.DistributedLocker
	lockKey     string
	lockTTL     time.Duration
	lockRefresh time.Duration // zero renews three times per ttl
	wait        domain.WaitPolicy
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	executor    *executor.Executor
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers step observers.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLocker overrides the store's own lock, e.g. with a Redis locker.
func WithLocker(l ports.DistributedLocker) EngineOption {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithLockKey names the migration lock.
func WithLockKey(key string) EngineOption {
	return func(e *Engine) {
		if key != "" {
			e.lockKey = key
		}
	}
}

// WithLockTTL sets the expiry of locks on backends that support it.
func WithLockTTL(ttl time.Duration) EngineOption {
	return func(e *Engine) {
		if ttl > 0 {
			e.lockTTL = ttl
		}
	}
}

// WithLockRefresh sets how often an expiring lock is renewed while a run holds it.
func WithLockRefresh(every time.Duration) EngineOption {
	return func(e *Engine) {
		if every > 0 {
			e.lockRefresh = every
		}
	}
}

// WithWaitPolicy decides how long a run waits for a busy lock.
func WithWaitPolicy(p domain.WaitPolicy) EngineOption {
	return func(e *Engine) {
		e.wait = p
	}
}

// NewEngine creates an engine over a validated graph.
func NewEngine(g *graph.Graph, opts ...EngineOption) *Engine {
	e := &Engine{
		graph:   g,
		lockKey: domain.DefaultLockKey,
		lockTTL: domain.DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.executor = executor.New(
		executor.WithLogger(e.logger),
		executor.WithLifecycleHooks(e.hooks),
	)
	return e
}

// Graph returns the revision graph the engine plans against.
func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// Heads returns the leaves of the graph, oldest first.
func (e *Engine) Heads() []string {
	return e.graph.Heads()
}

// Migrate moves store to target.
//
// The run holds the migration lock from before the marker is read until the
// last step finishes, renewing expiring locks as it goes and stopping with a
// *domain.MigrationInProgressError before the next step if the lease was lost, and always starts from the marker it reads, so calling
// Migrate again after a failure resumes from the last committed step.
// A store already at target yields an empty report.
func (e *Engine) Migrate(ctx context.Context, store ports.Store, target string) (*domain.ExecutionReport, error) {
	return e.migrate(ctx, store, target, "")
}

// Upgrade is Migrate restricted to forward steps.
func (e *Engine) Upgrade(ctx context.Context, store ports.Store, target string) (*domain.ExecutionReport, error) {
	return e.migrate(ctx, store, target, domain.DirectionUp)
}

// Downgrade is Migrate restricted to backward steps.
func (e *Engine) Downgrade(ctx context.Context, store ports.Store, target string) (*domain.ExecutionReport, error) {
	return e.migrate(ctx, store, target, domain.DirectionDown)
}

func (e *Engine) migrate(ctx context.Context, store ports.Store, target string, only domain.Direction) (report *domain.ExecutionReport, err error) {
	held, err := e.lock(ctx, store)
	if err != nil {
		return nil, err
	}
	defer held.release(ctx)

	plan, err := e.plan(ctx, store, target)
	if err != nil {
		return nil, err
	}
	if only != "" {
		if err := checkDirection(plan, only); err != nil {
			return nil, err
		}
	}

	log := e.logger.With("from", domain.DisplayID(plan.From), "target", domain.DisplayID(plan.To))
	if plan.Empty() {
		log.Info("already at target")
		return domain.NewReport(plan), nil
	}

	log.Info("migration started", "steps", len(plan.Steps))
	report, err = e.executor.Apply(ctx, store, plan, held.check)
	if err != nil {
		log.Error("migration stopped", "to", domain.DisplayID(report.To), "err", err)
		return report, err
	}
	log.Info("migration finished", "to", domain.DisplayID(report.To))
	return report, nil
}

// Plan computes the steps Migrate would run, without applying them.
// It takes the lock so the marker it plans from is not moving.
func (e *Engine) Plan(ctx context.Context, store ports.Store, target string) (*domain.Plan, error) {
	held, err := e.lock(ctx, store)
	if err != nil {
		return nil, err
	}
	defer held.release(ctx)
	return e.plan(ctx, store, target)
}

func (e *Engine) plan(ctx context.Context, store ports.Store, target string) (*domain.Plan, error) {
	current, err := inspector.Current(ctx, store, e.graph)
	if err != nil {
		return nil, err
	}
	to, err := planner.Resolve(e.graph, current, target)
	if err != nil {
		return nil, err
	}
	return planner.Plan(e.graph, current, to)
}

func checkDirection(plan *domain.Plan, want domain.Direction) error {
	for _, s := range plan.Steps {
		if s.Direction != want {
			return fmt.Errorf("%w: %s from %s to %s requires a %s step at %s",
				domain.ErrWrongDirection, verb(want), domain.DisplayID(plan.From),
				domain.DisplayID(plan.To), s.Direction, s.Revision.ID)
		}
	}
	return nil
}

func verb(d domain.Direction) string {
	if d == domain.DirectionUp {
		return "upgrade"
	}
	return "downgrade"
}
