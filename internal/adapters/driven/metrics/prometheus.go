// Package metrics provides MetricsRecorder implementations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/philiph/saml-fed/internal/core/ports"
)

// PrometheusMetricsRecorder records federation metrics using Prometheus.
type PrometheusMetricsRecorder struct {
	authnFlowsTotal         *prometheus.CounterVec
	filterRunsTotal         *prometheus.CounterVec
	stateOpsTotal           *prometheus.CounterVec
	logoutAssociationsTotal *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder creates a recorder using the default
// Prometheus registry.
func NewPrometheusMetricsRecorder() *PrometheusMetricsRecorder {
	return NewPrometheusMetricsRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsRecorderWithRegistry creates a recorder with a custom
// registry. Use this for testing.
func NewPrometheusMetricsRecorderWithRegistry(reg prometheus.Registerer) *PrometheusMetricsRecorder {
	authnFlowsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "saml_fed_authn_flows_total",
		Help: "Total authentication flows by chosen IdP and outcome",
	}, []string{"idp_entity_id", "outcome"})

	filterRunsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "saml_fed_filter_runs_total",
		Help: "Total processing filter executions by filter name and outcome",
	}, []string{"filter", "outcome"})

	stateOpsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "saml_fed_state_ops_total",
		Help: "Total state store operations by operation and result",
	}, []string{"op", "result"})

	logoutAssociationsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "saml_fed_logout_associations_total",
		Help: "Total logout association outcomes",
	}, []string{"status"})

	reg.MustRegister(
		authnFlowsTotal,
		filterRunsTotal,
		stateOpsTotal,
		logoutAssociationsTotal,
	)

	return &PrometheusMetricsRecorder{
		authnFlowsTotal:         authnFlowsTotal,
		filterRunsTotal:         filterRunsTotal,
		stateOpsTotal:           stateOpsTotal,
		logoutAssociationsTotal: logoutAssociationsTotal,
	}
}

// RecordAuthnFlow records an authentication flow outcome.
func (p *PrometheusMetricsRecorder) RecordAuthnFlow(idpEntityID, outcome string) {
	p.authnFlowsTotal.WithLabelValues(idpEntityID, outcome).Inc()
}

// RecordFilterRun records a processing filter execution.
func (p *PrometheusMetricsRecorder) RecordFilterRun(name, outcome string) {
	p.filterRunsTotal.WithLabelValues(name, outcome).Inc()
}

// RecordStateOp records a state store operation.
func (p *PrometheusMetricsRecorder) RecordStateOp(op, result string) {
	p.stateOpsTotal.WithLabelValues(op, result).Inc()
}

// RecordLogoutAssociation records a logout association outcome.
func (p *PrometheusMetricsRecorder) RecordLogoutAssociation(status string) {
	p.logoutAssociationsTotal.WithLabelValues(status).Inc()
}

// Ensure PrometheusMetricsRecorder implements ports.MetricsRecorder
var _ ports.MetricsRecorder = (*PrometheusMetricsRecorder)(nil)
