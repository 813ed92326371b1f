package ports

import "github.com/philiph/saml-fed/internal/core/domain"

// AuthnRequestOptions are the protocol parameters for one outbound
// AuthnRequest. Field semantics follow SAML 2.0 Core; nil/zero fields are
// omitted from the message.
type AuthnRequestOptions struct {
	ACSURL                string
	RelayState            string
	ForceAuthn            bool
	IsPassive             bool
	RequestedAuthnContext *domain.RequestedAuthnContext
	NameIDPolicy          *domain.NameIDPolicy

	// Scoping is omitted entirely when nil or empty.
	Scoping *domain.Scoping

	// Extensions holds raw XML fragments placed inside the samlp:Extensions
	// element. Each entry must be a single well-formed element.
	Extensions []string

	// Destination overrides the endpoint chosen from IdP metadata. Normally
	// empty.
	Destination string
}

// LogoutRequestOptions are the protocol parameters for one outbound
// LogoutRequest.
type LogoutRequestOptions struct {
	RelayState   string
	NameID       domain.NameID
	SessionIndex string

	// EncryptNameID requests encryption of the NameID to the recipient's
	// public key.
	EncryptNameID bool

	// Endpoint is the resolved single-logout endpoint to address.
	Endpoint domain.Endpoint
}

// OutboundMessage is a constructed protocol message ready for transport. The
// caller (controller layer, out of scope here) terminates the HTTP exchange.
type OutboundMessage struct {
	// MessageID is the protocol message's ID, used later to correlate
	// InResponseTo.
	MessageID string

	// Binding is the SAML binding the message was encoded for.
	Binding string

	// URL is the complete redirect URL for the HTTP-Redirect binding.
	URL string

	// PostURL and PostFields carry the HTTP-POST binding form when
	// Binding is BindingHTTPPost.
	PostURL    string
	PostFields map[string]string
}

// MessageBuilder is the port interface to the SAML message/binding library.
// Wire-format details (XML serialization, signing) live in the adapter.
type MessageBuilder interface {
	// BuildAuthnRequest constructs an AuthnRequest from the SP to the IdP
	// and encodes it for the IdP's SSO endpoint.
	BuildAuthnRequest(sp, idp *domain.EntityMetadata, opts AuthnRequestOptions) (*OutboundMessage, error)

	// BuildLogoutRequest constructs a LogoutRequest addressed to
	// opts.Endpoint.
	BuildLogoutRequest(sp, idp *domain.EntityMetadata, opts LogoutRequestOptions) (*OutboundMessage, error)
}
