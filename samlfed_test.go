//go:build unit

package samlfed

import (
	"errors"
	"testing"
	"time"
)

// TestFacadeProcessingChain runs a YAML-configured chain entirely through the
// re-exported surface.
func TestFacadeProcessingChain(t *testing.T) {
	chain, err := ParseChain([]byte(`
authproc:
  - priority: 50
    type: core:AttributeAdd
    attributes:
      eduPersonAffiliation: member
`), FilterDeps{})
	if err != nil {
		t.Fatalf("ParseChain: %v", err)
	}

	req := NewRequest(AttributeSet{"uid": {"alice"}}, nil, nil)
	if _, err := chain.Run(req); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := req.Attributes.First("eduPersonAffiliation"); got != "member" {
		t.Errorf("eduPersonAffiliation = %q", got)
	}
}

// TestFacadeStateStore exercises the memory store through the re-exported
// names and error matching via the re-exported error code.
func TestFacadeStateStore(t *testing.T) {
	var store StateStore = NewMemoryStateStore(time.Minute)

	state := AuthState{"uid": "alice"}
	id, err := store.Save(state, "test:stage", false)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := store.Load(id, "test:stage", false); err != nil {
		t.Fatalf("Load: %v", err)
	}

	_, err = store.Load(NewStateID(), "test:stage", false)
	if !errors.Is(err, &AppError{Code: ErrCodeStateLost}) {
		t.Errorf("unknown ID error = %v", err)
	}
}

// TestFacadeIdentifiers checks identifier derivation via the re-exported
// functions.
func TestFacadeIdentifiers(t *testing.T) {
	value, err := SubjectIDValue("Alice", "Example.ORG")
	if err != nil {
		t.Fatalf("SubjectIDValue: %v", err)
	}
	if value != "alice@example.org" {
		t.Errorf("subject-id = %q", value)
	}

	if !ValidScope("example.org") || ValidScope("exa mple.org") {
		t.Error("scope validation broken")
	}
}

// TestFacadeMetadata checks provider construction and lookup through the
// facade types.
func TestFacadeMetadata(t *testing.T) {
	var provider MetadataProvider = NewInMemoryMetadataProvider()
	idp := NewEntityMetadata("https://idp.example.org", MetadataSetIdPRemote, nil)
	idp.SingleSignOnServices = []Endpoint{
		{Binding: BindingHTTPRedirect, Location: "https://idp.example.org/sso"},
	}
	provider.(*InMemoryMetadataProvider).Add(idp)

	got, err := provider.GetMetadata("https://idp.example.org", MetadataSetIdPRemote)
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if ep := EndpointByBindings(got.SingleSignOnServices, BindingHTTPRedirect); ep == nil {
		t.Error("endpoint lost in round trip")
	}

	if _, err := provider.GetMetadata("https://other.example.org", MetadataSetIdPRemote); !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("missing entity error = %v", err)
	}
}

// TestFacadeMetrics checks the noop recorder satisfies the port.
func TestFacadeMetrics(t *testing.T) {
	var recorder MetricsRecorder = NewNoopMetricsRecorder()
	recorder.RecordAuthnFlow("https://idp.example.org", "completed")
}
