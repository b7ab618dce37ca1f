package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for downstream orchestration.
type Metrics struct {
	// Step outcomes by step name and result ("ok", "failed", "disabled")
	StepOutcomes *prometheus.CounterVec

	// Tasks dropped because the dispatch queue was full
	TasksDropped prometheus.Counter

	// Projection sync calls by kind ("incremental", "full") and result
	ProjectionSyncs *prometheus.CounterVec
}

// New creates a new Metrics instance with all orchestration metrics registered.
func New() *Metrics {
	return &Metrics{
		StepOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_orchestration_steps_total",
			Help: "Total downstream orchestration step outcomes",
		}, []string{"step", "result"}),

		TasksDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onboarding_orchestration_tasks_dropped_total",
			Help: "Total orchestration tasks dropped due to a full queue",
		}),

		ProjectionSyncs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_projection_syncs_total",
			Help: "Total projection sync attempts by kind and result",
		}, []string{"kind", "result"}),
	}
}

// IncrementStep records one orchestration step outcome.
func (m *Metrics) IncrementStep(step, result string) {
	if m != nil {
		m.StepOutcomes.WithLabelValues(step, result).Inc()
	}
}

// IncrementDropped records a task rejected by a full queue.
func (m *Metrics) IncrementDropped() {
	if m != nil {
		m.TasksDropped.Inc()
	}
}

// IncrementProjectionSync records one projection sync attempt.
func (m *Metrics) IncrementProjectionSync(kind, result string) {
	if m != nil {
		m.ProjectionSyncs.WithLabelValues(kind, result).Inc()
	}
}
