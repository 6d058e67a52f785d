package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records remediation outcomes. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry *prometheus.Registry

	// Runs by outcome: "compliant", "non_compliant", "failed"
	Runs *prometheus.CounterVec

	// Violations found per validation pass: "initial", "final"
	Violations *prometheus.HistogramVec

	// Fix actions submitted to the engine, by action name
	ActionsApplied *prometheus.CounterVec

	// Duration of each pipeline state transition
	StageDuration *prometheus.HistogramVec

	// Validator invocations by result: "compliant", "violations", "error"
	ValidatorCalls *prometheus.CounterVec
}

// NewMetrics creates the remediation metrics on a private registry, so several
// instances (tests, parallel runs) never collide on the default one.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdfua_runs_total",
			Help: "Total remediation runs by outcome",
		}, []string{"outcome"}),
		Violations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pdfua_violations",
			Help:    "Violations reported per validation pass",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}, []string{"pass"}),
		ActionsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdfua_actions_applied_total",
			Help: "Fix actions submitted to the document engine",
		}, []string{"action"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pdfua_stage_duration_seconds",
			Help:    "Duration of pipeline state transitions",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"state"}),
		ValidatorCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdfua_validator_calls_total",
			Help: "External validator invocations by result",
		}, []string{"result"}),
	}
	m.registry.MustRegister(m.Runs, m.Violations, m.ActionsApplied, m.StageDuration, m.ValidatorCalls)
	return m
}

// Registry exposes the registry for gathering
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// IncrementRun records a finished run.
func (m *Metrics) IncrementRun(outcome string) {
	if m != nil {
		m.Runs.WithLabelValues(outcome).Inc()
	}
}

// ObserveViolations records the violation count of a validation pass.
func (m *Metrics) ObserveViolations(pass string, n int) {
	if m != nil {
		m.Violations.WithLabelValues(pass).Observe(float64(n))
	}
}

// IncrementAction records a submitted fix action.
func (m *Metrics) IncrementAction(name string) {
	if m != nil {
		m.ActionsApplied.WithLabelValues(name).Inc()
	}
}

// ObserveStage records the duration of a state transition.
func (m *Metrics) ObserveStage(state string, d time.Duration) {
	if m != nil {
		m.StageDuration.WithLabelValues(state).Observe(d.Seconds())
	}
}

// IncrementValidatorCall records a validator invocation result.
func (m *Metrics) IncrementValidatorCall(result string) {
	if m != nil {
		m.ValidatorCalls.WithLabelValues(result).Inc()
	}
}

// WriteTextfile dumps all metrics in the node_exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
