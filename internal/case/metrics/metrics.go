package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the case intake module.
type Metrics struct {
	// Cases created by validation mode ("schema"/"legacy") and case type
	CasesCreated *prometheus.CounterVec

	// Schema validation rejections by entity type code
	ValidationFailures *prometheus.CounterVec

	// Lifecycle transitions by target status
	Transitions *prometheus.CounterVec

	// End-to-end intake latency up to commit (excludes orchestration)
	IntakeLatency prometheus.Histogram
}

// New creates a new Metrics instance with all case module metrics registered.
func New() *Metrics {
	return &Metrics{
		CasesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_cases_created_total",
			Help: "Total cases created by validation mode and case type",
		}, []string{"mode", "case_type"}),

		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_case_validation_failures_total",
			Help: "Total schema validation rejections by entity type code",
		}, []string{"entity_type"}),

		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_case_transitions_total",
			Help: "Total case lifecycle transitions by target status",
		}, []string{"to_status"}),

		IntakeLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboarding_case_intake_duration_seconds",
			Help:    "Duration of case intake from request to durable commit",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementCreated records a created case.
func (m *Metrics) IncrementCreated(mode, caseType string) {
	if m != nil {
		m.CasesCreated.WithLabelValues(mode, caseType).Inc()
	}
}

// IncrementValidationFailure records a schema validation rejection.
func (m *Metrics) IncrementValidationFailure(entityType string) {
	if m != nil {
		m.ValidationFailures.WithLabelValues(entityType).Inc()
	}
}

// IncrementTransition records a lifecycle transition.
func (m *Metrics) IncrementTransition(toStatus string) {
	if m != nil {
		m.Transitions.WithLabelValues(toStatus).Inc()
	}
}

// ObserveIntakeLatency records the synchronous intake duration.
func (m *Metrics) ObserveIntakeLatency(d time.Duration) {
	if m != nil {
		m.IntakeLatency.Observe(d.Seconds())
	}
}
