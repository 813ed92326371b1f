package authsource

import (
	"net/url"

	"go.uber.org/zap"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
	"github.com/philiph/saml-fed/internal/core/processing"
)

// OutboundMessage re-exports the port type for callers of this package.
type OutboundMessage = ports.OutboundMessage

// ResponseKind tags the possible outcomes of an auth source operation. Each
// suspend point is a distinct return value; the caller decides how to
// terminate the current execution.
type ResponseKind string

const (
	// ResponseSendToIdP: deliver Message to the IdP (redirect or POST form).
	ResponseSendToIdP ResponseKind = "send_to_idp"

	// ResponseDiscovery: redirect the user to the discovery service.
	ResponseDiscovery ResponseKind = "discovery"

	// ResponseRedirect: redirect to an application URL (unsolicited login).
	ResponseRedirect ResponseKind = "redirect"

	// ResponseSuspended: the processing chain suspended for user
	// interaction.
	ResponseSuspended ResponseKind = "suspended"

	// ResponseCompleted: authentication finished; Attributes are final.
	ResponseCompleted ResponseKind = "completed"

	// ResponseSatisfied: an existing session already satisfies the request;
	// nothing to do.
	ResponseSatisfied ResponseKind = "satisfied"
)

// Response is the tagged result of an auth source operation.
type Response struct {
	Kind        ResponseKind
	Message     *OutboundMessage
	RedirectURL string
	StateID     domain.StateID
	Attributes  domain.AttributeSet
	Suspension  *processing.Suspension
}

// HandleResponse processes a validated SAML response's attributes: it runs
// the processing chain and then completes the original flow. For unsolicited
// (IdP-initiated) logins the RelayState is an untrusted URL and is validated
// against the configured allow-list before use.
//
// The caller has loaded the state with StageSSOSent; attrs is the normalized
// attribute set extracted from the assertion.
func (s *SPAuthSource) HandleResponse(state domain.AuthState, idpEntityID string, attrs domain.AttributeSet) (*Response, error) {
	if expected := state.String(StateKeyExpectedIssuer, ""); expected != "" && expected != idpEntityID {
		s.recordFlow(idpEntityID, "issuer_mismatch")
		return nil, domain.AssertionError("",
			"response issuer %q does not match the requested IdP %q", idpEntityID, expected)
	}

	idpMeta, err := s.idpMetadata(idpEntityID)
	if err != nil {
		return nil, err
	}

	req := processing.NewRequest(attrs, idpMeta, s.spMeta)
	if requesters := state.Strings("saml:RequesterID"); len(requesters) > 0 {
		req.State["saml:RequesterID"] = requesters
	}
	if sp := state.String(domain.StateKeySP, ""); sp != "" {
		req.State[domain.StateKeySP] = sp
	}

	if s.chain != nil {
		susp, err := s.chain.Run(req)
		if err != nil {
			s.recordFlow(idpEntityID, "processing_failed")
			return nil, err
		}
		if susp != nil {
			return &Response{Kind: ResponseSuspended, Suspension: susp, StateID: susp.StateID}, nil
		}
	}

	s.recordFlow(idpEntityID, "completed")

	if state.Bool(StateKeyUnsolicited, false) {
		return s.unsolicitedRedirect(state, req)
	}

	return &Response{Kind: ResponseCompleted, Attributes: req.Attributes}, nil
}

// unsolicitedRedirect resolves the landing URL for an IdP-initiated login.
// The inbound RelayState is untrusted and must pass the allow-list; the
// configured default is trusted and used as-is.
func (s *SPAuthSource) unsolicitedRedirect(state domain.AuthState, req *processing.Request) (*Response, error) {
	target := s.cfg.DefaultReturnURL
	if target == "" {
		target = "/"
	}

	if relay := state.String(domain.StateKeyRelayState, ""); relay != "" {
		validated, err := domain.ValidateUntrustedURL(relay, s.cfg.AllowedRedirectHosts)
		if err != nil {
			s.logger.Warn("rejecting untrusted RelayState on unsolicited login",
				zap.Error(err))
		} else {
			target = validated
		}
	}

	return &Response{
		Kind:        ResponseRedirect,
		RedirectURL: target,
		Attributes:  req.Attributes,
	}, nil
}

// discoveryURL builds the discovery service redirect with the standard
// entityID and state parameters.
func discoveryURL(base, entityID string, stateID domain.StateID) string {
	target, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := target.Query()
	q.Set("entityID", entityID)
	q.Set(processing.StateIDParam, string(stateID))
	target.RawQuery = q.Encode()
	return target.String()
}
