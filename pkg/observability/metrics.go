package observability

import (
	"context"
	"fmt"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records migration activity on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	steps        *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	runs         *prometheus.CounterVec
	lastRun      prometheus.Gauge
}

// NewMetrics creates and registers the strata collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strata_steps_total",
				Help: "Total number of migration steps by direction and outcome",
			},
			[]string{"direction", "status"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "strata_step_duration_seconds",
				Help:    "Duration of migration steps",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"direction"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strata_runs_total",
				Help: "Total number of migration runs by outcome",
			},
			[]string{"outcome"},
		),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "strata_last_run_timestamp_seconds",
			Help: "Unix time of the last migration run",
		}),
	}
	m.registry.MustRegister(m.steps, m.stepDuration, m.runs, m.lastRun)
	return m
}

// Registry exposes the registry, e.g. for promhttp.HandlerFor.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Hooks returns lifecycle hooks that record step metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepFinish: func(_ context.Context, e *domain.StepEvent) {
			status := domain.StepApplied
			if e.Err != nil {
				status = domain.StepFailed
			}
			m.steps.WithLabelValues(string(e.Direction), string(status)).Inc()
			m.stepDuration.WithLabelValues(string(e.Direction)).Observe(e.Duration.Seconds())
		},
	}
}

// ObserveRun records the outcome of a whole run.
func (m *Metrics) ObserveRun(report *domain.ExecutionReport, err error) {
	outcome := "success"
	switch {
	case err != nil && report.Failed() != nil:
		outcome = "failed"
	case err != nil:
		outcome = "error"
	case report.Empty():
		outcome = "noop"
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.lastRun.SetToCurrentTime()
}

// WriteTextfile writes the current metrics in the text exposition format,
// atomically, for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
