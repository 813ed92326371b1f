//go:build unit

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"

	"github.com/philiph/saml-fed/internal/core/ports"
)

// TestNoopMetricsRecorder_Interface verifies the interface contract.
func TestNoopMetricsRecorder_Interface(t *testing.T) {
	var _ ports.MetricsRecorder = (*NoopMetricsRecorder)(nil)
}

// TestNoopMetricsRecorder_AllMethods verifies all methods don't panic.
func TestNoopMetricsRecorder_AllMethods(t *testing.T) {
	recorder := NewNoopMetricsRecorder()

	// None of these should panic
	recorder.RecordAuthnFlow("https://idp.example.org", "completed")
	recorder.RecordAuthnFlow("https://idp.example.org", "build_failed")
	recorder.RecordFilterRun("core:AttributeLimit", "continue")
	recorder.RecordStateOp("save", "ok")
	recorder.RecordLogoutAssociation("completed")
}

// TestPrometheusMetricsRecorder_Interface verifies the interface contract.
func TestPrometheusMetricsRecorder_Interface(t *testing.T) {
	var _ ports.MetricsRecorder = (*PrometheusMetricsRecorder)(nil)
}

// gatherFamily returns the named metric family or fails the test.
func gatherFamily(t *testing.T, registry *prometheus.Registry, name string) *io_prometheus_client.MetricFamily {
	t.Helper()
	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range metricFamilies {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("%s metric not found", name)
	return nil
}

// TestPrometheusMetricsRecorder_RecordAuthnFlow verifies flow outcome
// recording with labels.
func TestPrometheusMetricsRecorder_RecordAuthnFlow(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder := NewPrometheusMetricsRecorderWithRegistry(registry)

	recorder.RecordAuthnFlow("https://idp1.example.org", "completed")
	recorder.RecordAuthnFlow("https://idp1.example.org", "completed")
	recorder.RecordAuthnFlow("https://idp1.example.org", "processing_failed")
	recorder.RecordAuthnFlow("https://idp2.example.org", "completed")

	mf := gatherFamily(t, registry, "saml_fed_authn_flows_total")

	// Three distinct label combinations
	if len(mf.GetMetric()) != 3 {
		t.Errorf("expected 3 metric entries, got %d", len(mf.GetMetric()))
	}

	for _, m := range mf.GetMetric() {
		var idp, outcome string
		for _, label := range m.GetLabel() {
			switch label.GetName() {
			case "idp_entity_id":
				idp = label.GetValue()
			case "outcome":
				outcome = label.GetValue()
			}
		}
		if idp == "https://idp1.example.org" && outcome == "completed" {
			if m.GetCounter().GetValue() != 2 {
				t.Errorf("idp1 completed = %v, want 2", m.GetCounter().GetValue())
			}
		}
	}
}

// TestPrometheusMetricsRecorder_RecordFilterRun verifies filter execution
// recording.
func TestPrometheusMetricsRecorder_RecordFilterRun(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder := NewPrometheusMetricsRecorderWithRegistry(registry)

	recorder.RecordFilterRun("core:AttributeLimit", "continue")
	recorder.RecordFilterRun("core:CardinalitySingle", "suspend")

	mf := gatherFamily(t, registry, "saml_fed_filter_runs_total")
	if len(mf.GetMetric()) != 2 {
		t.Errorf("expected 2 metric entries, got %d", len(mf.GetMetric()))
	}
}

// TestPrometheusMetricsRecorder_RecordLogoutAssociation verifies logout
// outcome recording.
func TestPrometheusMetricsRecorder_RecordLogoutAssociation(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder := NewPrometheusMetricsRecorderWithRegistry(registry)

	recorder.RecordLogoutAssociation("completed")
	recorder.RecordLogoutAssociation("completed")
	recorder.RecordLogoutAssociation("failed")

	mf := gatherFamily(t, registry, "saml_fed_logout_associations_total")
	for _, m := range mf.GetMetric() {
		for _, label := range m.GetLabel() {
			if label.GetName() == "status" && label.GetValue() == "completed" {
				if m.GetCounter().GetValue() != 2 {
					t.Errorf("completed = %v, want 2", m.GetCounter().GetValue())
				}
			}
		}
	}
}
