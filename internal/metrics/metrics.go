// Package metrics exposes wizard engine activity as Prometheus metrics.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/stitch/pkg/domain"
)

// Collector records engine lifecycle events.
type Collector struct {
	events    *prometheus.CounterVec
	failures  *prometheus.CounterVec
	progress  *prometheus.HistogramVec
	finalized *prometheus.CounterVec
	gatherer  prometheus.Gatherer
}

// New creates a Collector and registers its metrics on reg.
// A nil reg uses a private registry.
func New(reg *prometheus.Registry) (*Collector, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	c := &Collector{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stitch_step_events_total",
				Help: "Step renders and accepted submissions by wizard and step",
			},
			[]string{"wizard", "step", "event"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stitch_validation_failures_total",
				Help: "Rejected step submissions by wizard, step and field",
			},
			[]string{"wizard", "step", "field"},
		),
		progress: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stitch_submit_progress_percent",
				Help:    "Completion percentage reached by accepted submissions",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
			[]string{"wizard"},
		),
		finalized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stitch_wizards_finalized_total",
				Help: "Wizards finalized by id",
			},
			[]string{"wizard"},
		),
		gatherer: reg,
	}

	for _, col := range []prometheus.Collector{c.events, c.failures, c.progress, c.finalized} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Hooks returns engine lifecycle hooks feeding the collector.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepRender: func(_ context.Context, e *domain.StepEvent) {
			c.events.WithLabelValues(e.WizardID, e.StepKey, string(e.Type)).Inc()
		},
		OnStepSubmit: func(_ context.Context, e *domain.StepEvent) {
			c.events.WithLabelValues(e.WizardID, e.StepKey, string(e.Type)).Inc()
			c.progress.WithLabelValues(e.WizardID).Observe(float64(e.Progress))
		},
		OnValidationFailed: func(_ context.Context, e *domain.StepEvent) {
			for _, field := range e.Errors.Keys() {
				c.failures.WithLabelValues(e.WizardID, e.StepKey, field).Inc()
			}
		},
		OnFinalize: func(_ context.Context, e *domain.StepEvent) {
			c.finalized.WithLabelValues(e.WizardID).Inc()
		},
	}
}

// Handler serves the collector's registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
