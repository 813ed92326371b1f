//go:build unit

package authsource

import (
	"errors"
	"testing"

	"github.com/philiph/saml-fed/internal/core/domain"
)

func sessionState(idp, authnContext string) domain.AuthState {
	state := domain.AuthState{
		StateKeySessionIdP: idp,
	}
	if authnContext != "" {
		state[StateKeySessionAuthnContext] = authnContext
	}
	for k, v := range logoutState(idp) {
		state[k] = v
	}
	return state
}

// TestReauthenticate_Satisfied verifies a session matching the new request's
// constraints requires no action.
func TestReauthenticate_Satisfied(t *testing.T) {
	src, _, _ := newTestSource(t, Config{},
		idpMetadata("https://idp.example.org", nil))

	state := sessionState("https://idp.example.org", "urn:example:password")
	state[StateKeyIDPList] = []any{"https://idp.example.org"}
	state[StateKeyAuthnContextClassRef] = []any{"urn:example:password"}

	resp, err := src.Reauthenticate(state)
	if err != nil {
		t.Fatalf("Reauthenticate: %v", err)
	}
	if resp.Kind != ResponseSatisfied {
		t.Errorf("kind = %q", resp.Kind)
	}
}

// TestReauthenticate_PassiveFails verifies an unsatisfied passive request
// fails with no_passive instead of detouring through logout.
func TestReauthenticate_PassiveFails(t *testing.T) {
	src, _, _ := newTestSource(t, Config{},
		idpMetadata("https://idp.example.org", nil),
		idpMetadata("https://other.example.org", nil))

	state := sessionState("https://idp.example.org", "")
	state[StateKeyIDPList] = []any{"https://other.example.org"}
	state[StateKeyIsPassive] = true

	_, err := src.Reauthenticate(state)
	if !errors.Is(err, &domain.AppError{Code: domain.ErrCodeNoPassive}) {
		t.Errorf("want no_passive, got %v", err)
	}
}

// TestReauthenticate_LogoutDetour verifies an unsatisfied interactive request
// starts logout at the session IdP, preserving the flow state.
func TestReauthenticate_LogoutDetour(t *testing.T) {
	sessionIdP := idpMetadata("https://idp.example.org", nil)
	sessionIdP.SingleLogoutServices = []domain.Endpoint{
		{Binding: domain.BindingHTTPRedirect, Location: "https://idp.example.org/slo"},
	}
	src, store, builder := newTestSource(t, Config{},
		sessionIdP,
		idpMetadata("https://other.example.org", nil))

	state := sessionState("https://idp.example.org", "")
	state[StateKeyIDPList] = []any{"https://other.example.org"}

	resp, err := src.Reauthenticate(state)
	if err != nil {
		t.Fatalf("Reauthenticate: %v", err)
	}
	if resp.Kind != ResponseSendToIdP {
		t.Fatalf("kind = %q", resp.Kind)
	}
	if builder.logoutOpts == nil {
		t.Fatal("expected a LogoutRequest towards the session IdP")
	}

	entry, ok := store.saved[resp.StateID]
	if !ok {
		t.Fatal("detour state not persisted")
	}
	if entry.stage != StageReauth {
		t.Errorf("stage = %q", entry.stage)
	}
}

// TestReauthenticate_NoLogoutEndpointGoesStraightToAuthn verifies the detour
// degenerates to a fresh authentication when the session IdP cannot do SLO.
func TestReauthenticate_NoLogoutEndpointGoesStraightToAuthn(t *testing.T) {
	src, _, builder := newTestSource(t, Config{},
		idpMetadata("https://idp.example.org", nil),
		idpMetadata("https://other.example.org", nil))

	state := sessionState("https://idp.example.org", "")
	state[StateKeyIDPList] = []any{"https://other.example.org"}

	resp, err := src.Reauthenticate(state)
	if err != nil {
		t.Fatalf("Reauthenticate: %v", err)
	}
	if resp.Kind != ResponseSendToIdP {
		t.Fatalf("kind = %q", resp.Kind)
	}
	if builder.logoutOpts != nil {
		t.Error("no LogoutRequest should have been built")
	}
	if builder.authnIdP != "https://other.example.org" {
		t.Errorf("authentication went to %q", builder.authnIdP)
	}
}

// TestReauthenticate_IDPListNoOverlap verifies an unsatisfiable IDPList fails
// with no_supported_idp.
func TestReauthenticate_IDPListNoOverlap(t *testing.T) {
	src, _, _ := newTestSource(t, Config{},
		idpMetadata("https://idp.example.org", nil))

	state := sessionState("https://idp.example.org", "")
	state[StateKeyIDPList] = []any{"https://unknown.example.org"}

	_, err := src.Reauthenticate(state)
	if !errors.Is(err, &domain.AppError{Code: domain.ErrCodeNoSupportedIDP}) {
		t.Errorf("want no_supported_idp, got %v", err)
	}
}
