/*
Package observability exposes the engine's integrator diagnostics as
Prometheus metrics. Metrics implements the runtime Recorder contract: the
scheduler hands it one StepReport per instance and macro step, and the
collectors accumulate evaluation, acceptance, rejection, and violation
counts per model instance.
*/
package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hydpy-dev/hydronet/pkg/domain"
)

// Metrics bundles the per-model integrator collectors.
type Metrics struct {
	Evaluations *prometheus.CounterVec
	Accepted    *prometheus.CounterVec
	Rejected    *prometheus.CounterVec
	Violations  *prometheus.CounterVec
	LastError   *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hydronet_part_ode_evaluations_total",
			Help: "PART_ODE group evaluations performed by the solver.",
		}, []string{"model"}),
		Accepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hydronet_substeps_accepted_total",
			Help: "Accepted solver sub-steps.",
		}, []string{"model"}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hydronet_substeps_rejected_total",
			Help: "Rejected solver sub-steps.",
		}, []string{"model"}),
		Violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hydronet_tolerance_violations_total",
			Help: "Sub-steps force-accepted at the minimum sub-step floor.",
		}, []string{"model"}),
		LastError: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hydronet_last_local_error",
			Help: "Largest local error estimate of the most recent macro step.",
		}, []string{"model"}),
	}
	if reg != nil {
		reg.MustRegister(m.Evaluations, m.Accepted, m.Rejected, m.Violations, m.LastError)
	}
	return m
}

// ObserveStep records one per-instance macro step report.
func (m *Metrics) ObserveStep(r *domain.StepReport) {
	labels := prometheus.Labels{"model": r.Model}
	m.Evaluations.With(labels).Add(float64(r.Evaluations))
	m.Accepted.With(labels).Add(float64(r.Accepted))
	m.Rejected.With(labels).Add(float64(r.Rejected))
	m.Violations.With(labels).Add(float64(len(r.Violations)))
	m.LastError.With(labels).Set(r.MaxError)
}
