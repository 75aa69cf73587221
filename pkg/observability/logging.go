package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/strata/pkg/domain"
)

// LoggingHooks logs every step at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepStart: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "Step Start",
				"revision", e.RevisionID, "direction", e.Direction, "index", e.Index, "total", e.Total)
		},
		OnStepFinish: func(ctx context.Context, e *domain.StepEvent) {
			if e.Err != nil {
				logger.DebugContext(ctx, "Step Failed",
					"revision", e.RevisionID, "direction", e.Direction, "duration", e.Duration, "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "Step Done",
				"revision", e.RevisionID, "direction", e.Direction, "duration", e.Duration)
		},
	}
}
