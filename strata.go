package strata

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/strata/internal/graph"
	"github.com/aretw0/strata/internal/runtime"
	"github.com/aretw0/strata/pkg/adapters/loam"
	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
)

// Symbolic targets accepted by Migrate, Upgrade, Downgrade and Plan.
const (
	TargetHead = "head"
	TargetBase = "base"
)

// Engine is the high-level entry point for the strata library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime     *runtime.Engine
	source      ports.RevisionSource
	graphOpts   []graph.Option
	runtimeOpts []runtime.EngineOption
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	Name        string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithSource injects a custom RevisionSource, bypassing the default Loam directory.
func WithSource(s ports.RevisionSource) Option {
	return func(e *Engine) {
		e.source = s
	}
}

// WithRevisions uses revisions defined in Go.
func WithRevisions(revs ...domain.Revision) Option {
	return WithSource(memory.NewSource(revs...))
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls chain the hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLocker replaces the store's own lock with an external one (e.g. Redis).
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithLocker(l))
	}
}

// WithLockKey sets the key of the migration lock.
func WithLockKey(key string) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithLockKey(key))
	}
}

// WithLockTTL bounds how long a crashed holder keeps the lock on backends with expiry.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithLockTTL(ttl))
	}
}

// WithLockRefresh sets how often an expiring lock is renewed during a run.
// The default renews three times per lock TTL.
func WithLockRefresh(every time.Duration) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithLockRefresh(every))
	}
}

// WithWaitPolicy controls how long a run waits for a held lock.
func WithWaitPolicy(p domain.WaitPolicy) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithWaitPolicy(p))
	}
}

// WithDefaultHead names the revision whose branch "head" follows when the
// graph has several heads, overriding any revision marked default.
func WithDefaultHead(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.graphOpts = append(e.graphOpts, graph.WithDefaultHead(id))
		}
	}
}

// New initializes a new strata Engine.
// By default, it reads revision documents from the directory at dir.
// If WithSource or WithRevisions is provided, dir can be empty and Loam is skipped.
// Revisions are loaded and validated once, here.
func New(dir string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.source == nil {
		if dir == "" {
			return nil, fmt.Errorf("dir is required when no custom source is provided")
		}
		absPath, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(absPath)

		src, err := loam.Open(absPath)
		if err != nil {
			return nil, err
		}
		eng.source = src
	} else if dir != "" {
		eng.Name = filepath.Base(dir)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("revisions", eng.Name)
	}

	revs, err := eng.source.Revisions(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load revisions: %w", err)
	}
	g, err := graph.Build(revs, eng.graphOpts...)
	if err != nil {
		return nil, err
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
	}
	eng.runtime = runtime.NewEngine(g, append(runtimeOpts, eng.runtimeOpts...)...)
	return eng, nil
}

// Migrate moves store to target, upgrading or downgrading as needed.
// On failure the report tells which step failed and which never ran; the
// store keeps every step committed before it.
func (e *Engine) Migrate(ctx context.Context, store ports.Store, target string) (*domain.ExecutionReport, error) {
	return e.runtime.Migrate(ctx, store, target)
}

// Upgrade moves store forward to target, "head" when empty.
func (e *Engine) Upgrade(ctx context.Context, store ports.Store, target string) (*domain.ExecutionReport, error) {
	if target == "" {
		target = TargetHead
	}
	return e.runtime.Upgrade(ctx, store, target)
}

// Downgrade moves store backward to target, one revision ("-1") when empty.
func (e *Engine) Downgrade(ctx context.Context, store ports.Store, target string) (*domain.ExecutionReport, error) {
	if target == "" {
		target = "-1"
	}
	return e.runtime.Downgrade(ctx, store, target)
}

// Plan returns the steps Migrate would run, without running them.
func (e *Engine) Plan(ctx context.Context, store ports.Store, target string) (*domain.Plan, error) {
	return e.runtime.Plan(ctx, store, target)
}

// Status reports the store's marker against the graph.
func (e *Engine) Status(ctx context.Context, store ports.Store) (*domain.Status, error) {
	return e.runtime.Status(ctx, store)
}

// History lists every revision, newest first, flagged against the store's marker.
func (e *Engine) History(ctx context.Context, store ports.Store) ([]domain.HistoryEntry, error) {
	return e.runtime.History(ctx, store)
}

// Heads returns the leaves of the revision graph, oldest first.
func (e *Engine) Heads() []string {
	return e.runtime.Heads()
}

// Revisions returns the graph's revisions, parents before children.
func (e *Engine) Revisions() []*domain.Revision {
	return e.runtime.Graph().Revisions()
}

// Source returns the RevisionSource the engine was loaded from.
func (e *Engine) Source() ports.RevisionSource {
	return e.source
}
