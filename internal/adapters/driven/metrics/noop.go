package metrics

import (
	"github.com/philiph/saml-fed/internal/core/ports"
)

// NoopMetricsRecorder is a no-op implementation for when metrics are disabled.
// All methods are safe to call and do nothing.
type NoopMetricsRecorder struct{}

// NewNoopMetricsRecorder creates a new no-op metrics recorder.
func NewNoopMetricsRecorder() *NoopMetricsRecorder {
	return &NoopMetricsRecorder{}
}

// RecordAuthnFlow is a no-op.
func (n *NoopMetricsRecorder) RecordAuthnFlow(idpEntityID, outcome string) {}

// RecordFilterRun is a no-op.
func (n *NoopMetricsRecorder) RecordFilterRun(name, outcome string) {}

// RecordStateOp is a no-op.
func (n *NoopMetricsRecorder) RecordStateOp(op, result string) {}

// RecordLogoutAssociation is a no-op.
func (n *NoopMetricsRecorder) RecordLogoutAssociation(status string) {}

// Ensure NoopMetricsRecorder implements ports.MetricsRecorder
var _ ports.MetricsRecorder = (*NoopMetricsRecorder)(nil)
