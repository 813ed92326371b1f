package ports

// MetricsRecorder is the port interface for recording metrics.
// Implementations are adapters (PrometheusMetricsRecorder for production,
// NoopMetricsRecorder for disabled/testing).
type MetricsRecorder interface {
	// RecordAuthnFlow records the outcome of an outbound SSO flow.
	RecordAuthnFlow(idpEntityID string, outcome string)

	// RecordFilterRun records one filter execution. outcome is one of
	// "continue", "suspend", "error".
	RecordFilterRun(filterName string, outcome string)

	// RecordStateOp records a state store operation. op is one of "save",
	// "load", "delete"; result is "ok", "miss", "stage_mismatch", "error".
	RecordStateOp(op string, result string)

	// RecordLogoutAssociation records the terminal status of one association
	// during single logout ("completed" or "failed").
	RecordLogoutAssociation(status string)
}
