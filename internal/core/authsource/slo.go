package authsource

import (
	"go.uber.org/zap"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// StartSLO begins single logout towards the IdP of the current session. The
// state must carry the IdP entity ID, the NameID and the SessionIndex from
// the session; their absence is a programming error, not a user-recoverable
// condition.
//
// Returns (nil, nil) when the IdP exposes no usable single-logout endpoint:
// there is nothing to send, and the caller must treat logout as completed
// without a request.
func (s *SPAuthSource) StartSLO(state domain.AuthState) (*Response, error) {
	idpEntityID := state.String(StateKeyLogoutIdP, "")
	nameID := nameIDFromState(state)
	sessionIndex := state.String(StateKeyLogoutSessionIndex, "")

	if idpEntityID == "" || nameID.Value == "" || sessionIndex == "" {
		return nil, domain.AssertionError("",
			"StartSLO called without IdP, NameID and SessionIndex in state")
	}

	idpMeta, err := s.idpMetadata(idpEntityID)
	if err != nil {
		return nil, err
	}

	endpoint := domain.EndpointByBindings(idpMeta.SingleLogoutServices,
		domain.BindingHTTPRedirect, domain.BindingHTTPPost)
	if endpoint == nil {
		s.logger.Info("IdP has no single logout endpoint, skipping LogoutRequest",
			zap.String("idp", idpEntityID))
		return nil, nil
	}

	// The SP-specific setting overrides the IdP default.
	encrypt := idpMeta.OptionalBool("nameid.encryption", false)
	if s.spMeta.Has("nameid.encryption") {
		encrypt = s.spMeta.OptionalBool("nameid.encryption", false)
	}

	id, err := s.states.Save(state.Copy(), StageSLOSent, true)
	if err != nil {
		return nil, err
	}

	msg, err := s.builder.BuildLogoutRequest(s.spMeta, idpMeta, ports.LogoutRequestOptions{
		RelayState:    string(id),
		NameID:        nameID,
		SessionIndex:  sessionIndex,
		EncryptNameID: encrypt,
		Endpoint:      *endpoint,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("logout request sent",
		zap.String("idp", idpEntityID),
		zap.String("binding", msg.Binding),
		zap.String("state_id", string(id)))

	return &Response{Kind: ResponseSendToIdP, Message: msg, StateID: id}, nil
}

// nameIDFromState reads the NameID map stored under StateKeyLogoutNameID.
func nameIDFromState(state domain.AuthState) domain.NameID {
	raw := state.Map(StateKeyLogoutNameID)
	if raw == nil {
		return domain.NameID{}
	}
	m := domain.AuthState(raw)
	return domain.NameID{
		Format:          m.String("format", ""),
		Value:           m.String("value", ""),
		NameQualifier:   m.String("namequalifier", ""),
		SPNameQualifier: m.String("spnamequalifier", ""),
	}
}

// NameIDToState converts a NameID into the map form stored in AuthState.
func NameIDToState(n domain.NameID) map[string]any {
	return map[string]any{
		"format":          n.Format,
		"value":           n.Value,
		"namequalifier":   n.NameQualifier,
		"spnamequalifier": n.SPNameQualifier,
	}
}
