package authsource

import (
	"go.uber.org/zap"

	"github.com/philiph/saml-fed/internal/core/domain"
)

// Reauthenticate checks whether the existing session satisfies a newly
// arrived proxied request's constraints, and when it does not, starts a
// logout-then-reauthenticate detour. The original ReturnCallback in state is
// preserved across the detour.
//
// The state describes both the session (StateKeySessionIdP,
// StateKeySessionAuthnContext, StateKeyLogout*) and the new request's
// constraints (StateKeyIDPList, authentication context keys, isPassive).
func (s *SPAuthSource) Reauthenticate(state domain.AuthState) (*Response, error) {
	sessionIdP := state.String(StateKeySessionIdP, "")
	if sessionIdP == "" {
		return nil, domain.AssertionError("", "Reauthenticate called without a session IdP in state")
	}

	idpOK, err := s.sessionIdPAcceptable(state, sessionIdP)
	if err != nil {
		return nil, err
	}
	contextOK := s.sessionContextAcceptable(state)

	if idpOK && contextOK {
		return &Response{Kind: ResponseSatisfied}, nil
	}

	// A passive request cannot silently satisfy the new constraint: we would
	// need to log the user out and show the IdP's login page again.
	if state.Bool(StateKeyIsPassive, false) {
		return nil, domain.NoPassiveError("Reauthentication required, but the request is passive.")
	}

	s.logger.Info("session does not satisfy request constraints, starting reauthentication",
		zap.String("session_idp", sessionIdP),
		zap.Bool("idp_acceptable", idpOK),
		zap.Bool("context_acceptable", contextOK))

	return s.reauthLogout(state)
}

// sessionIdPAcceptable applies the IDPList constraint rules: a session IdP
// outside the required list is only recoverable when known IdPs overlap the
// list and configuration does not pin an excluded IdP.
func (s *SPAuthSource) sessionIdPAcceptable(state domain.AuthState, sessionIdP string) (bool, error) {
	idpList := state.Strings(StateKeyIDPList)
	if len(idpList) == 0 || contains(idpList, sessionIdP) {
		return true, nil
	}

	overlap, err := s.knownFrom(idpList)
	if err != nil {
		return false, err
	}
	if len(overlap) == 0 {
		return false, domain.NoSupportedIDPError()
	}
	if s.cfg.IdP != "" && !contains(overlap, s.cfg.IdP) {
		return false, domain.NoAvailableIDPError()
	}
	return false, nil
}

// sessionContextAcceptable reports whether the session's authentication
// context satisfies the newly requested one. An empty request always
// matches; otherwise the session context must be among the requested class
// references.
func (s *SPAuthSource) sessionContextAcceptable(state domain.AuthState) bool {
	requested := state.Strings(StateKeyAuthnContextClassRef)
	if len(requested) == 0 {
		if proxied := state.Map(StateKeyProxiedAuthnContext); proxied != nil {
			requested = domain.AuthState(proxied).Strings("classrefs")
		}
	}
	if len(requested) == 0 {
		return true
	}
	return contains(requested, state.String(StateKeySessionAuthnContext, ""))
}

// reauthLogout persists the flow and logs out from the current IdP. When the
// IdP has no logout endpoint the detour degenerates to an immediate
// re-authentication.
func (s *SPAuthSource) reauthLogout(state domain.AuthState) (*Response, error) {
	saved := state.Copy()
	id, err := s.states.Save(saved, StageReauth, true)
	if err != nil {
		return nil, err
	}

	logoutState := state.Copy()
	logoutState[StateKeyLogoutIdP] = state.String(StateKeySessionIdP, "")

	resp, err := s.StartSLO(logoutState)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		// Nothing to send: proceed straight to re-authentication.
		return s.ReauthPostLogout(saved)
	}
	resp.StateID = id
	return resp, nil
}

// ReauthPostLogout continues the detour after the IdP confirmed logout. The
// caller has loaded the state with StageReauth; the preserved state, with
// its original ReturnCallback, flows into a fresh authentication.
func (s *SPAuthSource) ReauthPostLogout(state domain.AuthState) (*Response, error) {
	return s.Authenticate(state)
}
