package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/config"
	"github.com/aretw0/strata/pkg/adapters/file"
	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/adapters/postgres"
	"github.com/aretw0/strata/pkg/adapters/redis"
	"github.com/aretw0/strata/pkg/adapters/sqlite"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/observability"
	"github.com/aretw0/strata/pkg/ports"
)

// createEngine initializes a strata engine with standard CLI conventions.
// The returned close function releases the Redis client, if any, and is never nil.
func createEngine(ctx context.Context, cfg config.Config, logger *slog.Logger, hooks domain.LifecycleHooks) (*strata.Engine, func() error, error) {
	closeLocker := func() error { return nil }

	engineOpts := []strata.Option{
		strata.WithLogger(logger),
		strata.WithLifecycleHooks(hooks),
		strata.WithDefaultHead(cfg.DefaultHead),
		strata.WithLockKey(cfg.LockKey),
		strata.WithLockTTL(cfg.LockTTL),
		strata.WithWaitPolicy(cfg.WaitPolicy()),
	}
	if cfg.Debug {
		engineOpts = append(engineOpts, strata.WithLifecycleHooks(observability.LoggingHooks(logger)))
	}

	if cfg.Redis != "" {
		locker, err := redis.Dial(ctx, cfg.Redis, "")
		if err != nil {
			return nil, closeLocker, err
		}
		closeLocker = locker.Close
		engineOpts = append(engineOpts, strata.WithLocker(locker))
	}

	engine, err := strata.New(cfg.Revisions, engineOpts...)
	if err != nil {
		_ = closeLocker()
		return nil, func() error { return nil }, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, closeLocker, nil
}

// openStore connects to the store the configuration names.
// The returned close function is never nil.
func openStore(ctx context.Context, cfg config.Config) (ports.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case "sqlite":
		s, err := sqlite.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case "postgres":
		s, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, noop, err
		}
		return s, func() error { s.Close(); return nil }, nil
	case "file":
		return file.New(cfg.DSN), noop, nil
	case "memory":
		return memory.NewStore(), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown driver %q", cfg.Driver)
}
