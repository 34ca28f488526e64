package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the risk workflow.
type Metrics struct {
	// Orders created per store plan
	OrdersCreated prometheus.Counter

	// Risk evaluation outcomes by level ("none" when clean)
	EvaluationOutcome *prometheus.CounterVec

	// Response actions applied by type
	ActionsApplied *prometheus.CounterVec

	// History recompute conflicts that exhausted the retry budget
	HistoryConflicts prometheus.Counter

	// Audit writes that failed and forced a rollback
	AuditFailures prometheus.Counter

	// Full screening latency including history recompute
	ScreenLatency prometheus.Histogram
}

// New creates a Metrics instance with all risk workflow metrics registered.
func New() *Metrics {
	return &Metrics{
		OrdersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_orders_created_total",
			Help: "Total orders accepted into the risk pipeline",
		}),

		EvaluationOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_risk_evaluations_total",
			Help: "Total risk evaluations by resulting level",
		}, []string{"level"}),

		ActionsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_order_actions_total",
			Help: "Total response actions applied to flagged orders",
		}, []string{"action"}),

		HistoryConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_history_recompute_conflicts_total",
			Help: "Customer history recomputes abandoned after retry exhaustion",
		}),

		AuditFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_audit_write_failures_total",
			Help: "Audit log writes that failed and rolled back their mutation",
		}),

		ScreenLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentinel_order_screen_duration_seconds",
			Help:    "Duration of full order screening including history recompute",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementEvaluation records a risk evaluation outcome.
func (m *Metrics) IncrementEvaluation(level string) {
	if m != nil {
		m.EvaluationOutcome.WithLabelValues(level).Inc()
	}
}

// IncrementAction records an applied response action.
func (m *Metrics) IncrementAction(action string) {
	if m != nil {
		m.ActionsApplied.WithLabelValues(action).Inc()
	}
}

// IncrementAuditFailure records an audit write that rolled back its mutation.
func (m *Metrics) IncrementAuditFailure() {
	if m != nil {
		m.AuditFailures.Inc()
	}
}

// ObserveScreenLatency records the duration of a full order screening.
func (m *Metrics) ObserveScreenLatency(d time.Duration) {
	if m != nil {
		m.ScreenLatency.Observe(d.Seconds())
	}
}
