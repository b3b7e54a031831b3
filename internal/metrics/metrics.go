// Package metrics provides Prometheus instrumentation for the planning
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "microcycle"

// Recorder owns the Prometheus instruments for plan generation and the
// completion service. A nil *Recorder is valid and records nothing, so the
// engine and the CLI can run without a metrics endpoint.
type Recorder struct {
	registry *prometheus.Registry

	plansGenerated     *prometheus.CounterVec
	dayFallbacks       prometheus.Counter
	planDuration       prometheus.Histogram
	completionRequests *prometheus.CounterVec
	completionRetries  prometheus.Counter
}

// NewRecorder builds a recorder backed by its own registry, keeping the
// exposition free of default Go runtime metrics.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	return &Recorder{
		registry: registry,

		plansGenerated: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_generated_total",
			Help:      "Total number of plans generated, by planning strategy",
		}, []string{"strategy"}),

		dayFallbacks: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "day_fallback_total",
			Help:      "Total number of days compiled from the built-in templates instead of the model",
		}),

		planDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_generation_seconds",
			Help:      "Wall-clock duration of full plan generation in seconds",
			Buckets:   []float64{0.01, 0.05, 0.25, 1, 2.5, 5, 10, 30, 60},
		}),

		completionRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_requests_total",
			Help:      "Total number of completion service requests, by outcome",
		}, []string{"outcome"}),

		completionRetries: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_retries_total",
			Help:      "Total number of corrective retries against the completion service",
		}),
	}
}

// PlanGenerated counts one finished plan for the named strategy.
func (r *Recorder) PlanGenerated(strategy string) {
	if r == nil {
		return
	}
	r.plansGenerated.WithLabelValues(strategy).Inc()
}

// DayFallback counts one day that was filled from the templates.
func (r *Recorder) DayFallback() {
	if r == nil {
		return
	}
	r.dayFallbacks.Inc()
}

// PlanDuration records how long one plan generation took.
func (r *Recorder) PlanDuration(seconds float64) {
	if r == nil {
		return
	}
	r.planDuration.Observe(seconds)
}

// CompletionRequest counts one completion call with its outcome.
func (r *Recorder) CompletionRequest(outcome string) {
	if r == nil {
		return
	}
	r.completionRequests.WithLabelValues(outcome).Inc()
}

// CompletionRetry counts one corrective retry turn.
func (r *Recorder) CompletionRetry() {
	if r == nil {
		return
	}
	r.completionRetries.Inc()
}

// Handler serves the recorder's registry. A nil recorder falls back to the
// process-default exposition.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
