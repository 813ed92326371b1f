package samlfed

import (
	"github.com/philiph/saml-fed/internal/adapters/driven/metrics"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// MetricsRecorder is the port interface for recording metrics.
// Implementations are adapters (PrometheusMetricsRecorder for production,
// NoopMetricsRecorder for disabled/testing).
type MetricsRecorder = ports.MetricsRecorder

// Re-export metrics recorder implementations
type PrometheusMetricsRecorder = metrics.PrometheusMetricsRecorder
type NoopMetricsRecorder = metrics.NoopMetricsRecorder

var (
	NewPrometheusMetricsRecorder             = metrics.NewPrometheusMetricsRecorder
	NewPrometheusMetricsRecorderWithRegistry = metrics.NewPrometheusMetricsRecorderWithRegistry
	NewNoopMetricsRecorder                   = metrics.NewNoopMetricsRecorder
)
