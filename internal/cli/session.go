package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/config"
	"github.com/aretw0/strata/internal/presentation/tui"
	"github.com/aretw0/strata/pkg/observability"
	"github.com/aretw0/strata/pkg/ports"
)

// Session bundles what a command needs: the engine, the store and the output.
type Session struct {
	Config  config.Config
	Engine  *strata.Engine
	Store   ports.Store
	Printer *tui.Printer
	Logger  *slog.Logger
	Metrics *observability.Metrics

	closers []func() error
}

// OpenSession builds the engine from the revisions and connects to the store.
func OpenSession(ctx context.Context, cfg config.Config, out io.Writer) (*Session, error) {
	s, err := openEngineOnly(ctx, cfg, out)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Driver, err)
	}
	s.Store = store
	s.closers = append(s.closers, closeStore)
	return s, nil
}

// openEngineOnly is OpenSession without a store, for commands that only read revisions.
func openEngineOnly(ctx context.Context, cfg config.Config, out io.Writer) (*Session, error) {
	logger := createLogger(cfg.Debug)
	metrics := observability.NewMetrics()

	engine, closeLocker, err := createEngine(ctx, cfg, logger, metrics.Hooks())
	if err != nil {
		return nil, err
	}
	return &Session{
		Config:  cfg,
		Engine:  engine,
		Printer: tui.NewPrinter(out),
		Logger:  logger,
		Metrics: metrics,
		closers: []func() error{closeLocker},
	}, nil
}

// Close releases the store and the locker connection, and writes the metrics
// file when one is configured and a store was opened.
func (s *Session) Close() error {
	var errs []error
	if s.Config.MetricsFile != "" && s.Store != nil {
		errs = append(errs, s.Metrics.WriteTextfile(s.Config.MetricsFile))
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}
