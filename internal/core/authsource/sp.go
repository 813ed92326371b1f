// Package authsource implements the Service Provider authentication source:
// the outbound SSO/SLO state machine that selects an identity provider,
// builds protocol requests, and drives responses through the attribute
// processing chain.
package authsource

import (
	"errors"

	"go.uber.org/zap"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
	"github.com/philiph/saml-fed/internal/core/processing"
)

// Stage tags for states saved by this auth source. Loading a state with the
// wrong stage fails; the tags are part of the save/load contract.
const (
	StageSSOSent   = "samlfed:sp:sso"
	StageDiscovery = "samlfed:sp:disco"
	StageReauth    = "samlfed:sp:reauth"
	StageSLOSent   = "samlfed:sp:slo"
)

// Well-known state keys read and written by the SP auth source.
const (
	// StateKeyIdP overrides IdP selection when the source itself pins none.
	StateKeyIdP = "saml:idp"

	// StateKeyIDPList restricts the acceptable IdPs (from a proxied
	// request's Scoping).
	StateKeyIDPList = "saml:IDPList"

	// StateKeyProxyCount is the remaining proxy hop budget.
	StateKeyProxyCount = "saml:ProxyCount"

	// StateKeyForceAuthn and StateKeyIsPassive mirror the AuthnRequest flags.
	StateKeyForceAuthn = "ForceAuthn"
	StateKeyIsPassive  = "isPassive"

	// StateKeyAuthnContextClassRef / Comparison override the requested
	// authentication context for this flow.
	StateKeyAuthnContextClassRef   = "saml:AuthnContextClassRef"
	StateKeyAuthnContextComparison = "saml:AuthnContextComparison"

	// StateKeyProxiedAuthnContext carries a RequestedAuthnContext proxied
	// through from an inbound request: a map with "classrefs" and
	// "comparison".
	StateKeyProxiedAuthnContext = "saml:RequestedAuthnContext"

	// StateKeyNameIDPolicy is a map with "format" and "allowcreate".
	StateKeyNameIDPolicy = "saml:NameIDPolicy"

	// StateKeyExtensions holds raw XML extension fragments overriding the
	// SP metadata's configured defaults.
	StateKeyExtensions = "saml:Extensions"

	// StateKeyExpectedIssuer is set when a request is sent and checked when
	// the response arrives.
	StateKeyExpectedIssuer = "saml:sp:ExpectedIssuer"

	// StateKeyUnsolicited marks IdP-initiated (unsolicited) logins.
	StateKeyUnsolicited = "saml:sp:isUnsolicited"

	// StateKeySessionIdP and StateKeySessionAuthnContext describe the
	// existing session during reauthentication checks.
	StateKeySessionIdP          = "saml:sp:IdP"
	StateKeySessionAuthnContext = "saml:sp:AuthnContext"

	// StateKeyLogoutIdP, StateKeyLogoutNameID and StateKeyLogoutSessionIndex
	// carry the session details required to build a LogoutRequest.
	StateKeyLogoutIdP          = "saml:logout:IdP"
	StateKeyLogoutNameID       = "saml:logout:NameID"
	StateKeyLogoutSessionIndex = "saml:logout:SessionIndex"
)

// Config is the static configuration of one SP authentication source.
// Validated eagerly by New; a bad config makes the source unusable.
type Config struct {
	// EntityID is this SP's entity ID.
	EntityID string `yaml:"entityID"`

	// IdP pins a single identity provider. Empty means the IdP is chosen
	// per request (state override, IDPList, or discovery).
	IdP string `yaml:"idp"`

	// DiscoURL is the IdP discovery service used when selection is
	// ambiguous.
	DiscoURL string `yaml:"discoURL"`

	// ACSURL is the assertion consumer service URL placed in requests.
	ACSURL string `yaml:"acsURL"`

	// DefaultReturnURL is where unsolicited logins land when they carry no
	// usable RelayState. Trusted configuration, not validated.
	DefaultReturnURL string `yaml:"defaultReturnURL"`

	// AllowedRedirectHosts is the allow-list for untrusted redirect targets.
	AllowedRedirectHosts []string `yaml:"allowedRedirectHosts"`

	// Options are free-form SP metadata options (disable_scoping,
	// nameid.encryption, extensions, AuthnContextClassRef, ...).
	Options map[string]any `yaml:"options"`
}

// SPAuthSource orchestrates outbound SSO and SLO for one service provider.
// All collaborators are injected; there is no ambient global lookup.
type SPAuthSource struct {
	cfg      Config
	spMeta   *domain.EntityMetadata
	states   ports.StateStore
	metadata ports.MetadataProvider
	builder  ports.MessageBuilder
	chain    *processing.Chain
	metrics  ports.MetricsRecorder
	logger   *zap.Logger
}

// Option configures an SPAuthSource.
type Option func(*SPAuthSource)

// WithMetrics sets the metrics recorder.
func WithMetrics(m ports.MetricsRecorder) Option {
	return func(s *SPAuthSource) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *SPAuthSource) { s.logger = l }
}

// New creates an SPAuthSource, validating the configuration eagerly.
func New(cfg Config, states ports.StateStore, metadata ports.MetadataProvider, builder ports.MessageBuilder, chain *processing.Chain, opts ...Option) (*SPAuthSource, error) {
	if cfg.EntityID == "" {
		return nil, domain.ConfigError("sp auth source: entityID is required")
	}
	if cfg.ACSURL == "" {
		return nil, domain.ConfigError("sp auth source: acsURL is required")
	}
	if states == nil || metadata == nil || builder == nil {
		return nil, domain.ConfigError("sp auth source: state store, metadata provider and message builder are required")
	}

	spMeta := domain.NewEntityMetadata(cfg.EntityID, domain.MetadataSetSPHosted, cfg.Options)
	if err := domain.ValidateAuthnContextComparison(spMeta.OptionalString("AuthnContextComparison", "")); err != nil {
		return nil, domain.ConfigError("sp auth source: %v", err)
	}

	s := &SPAuthSource{
		cfg:      cfg,
		spMeta:   spMeta,
		states:   states,
		metadata: metadata,
		builder:  builder,
		chain:    chain,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Metadata returns this SP's own metadata view.
func (s *SPAuthSource) Metadata() *domain.EntityMetadata {
	return s.spMeta
}

// Authenticate starts an outbound SSO flow. Depending on configuration and
// state it either sends an AuthnRequest to a resolved IdP, or redirects to
// the discovery service, persisting the flow state across the redirect.
func (s *SPAuthSource) Authenticate(state domain.AuthState) (*Response, error) {
	// A proxied request that has exhausted its hop budget must not be
	// forwarded again.
	if state.Has(StateKeyProxyCount) && state.Int(StateKeyProxyCount, 0) <= 0 {
		return nil, domain.ProxyCountExceededError()
	}

	idp := s.cfg.IdP
	if idp == "" {
		idp = state.String(StateKeyIdP, "")
	}

	idpList := state.Strings(StateKeyIDPList)
	if len(idpList) > 0 {
		if idp != "" {
			if !contains(idpList, idp) {
				return nil, domain.NoAvailableIDPError()
			}
		} else {
			candidates, err := s.knownFrom(idpList)
			if err != nil {
				return nil, err
			}
			switch len(candidates) {
			case 0:
				return nil, domain.NoSupportedIDPError()
			case 1:
				idp = candidates[0]
			default:
				return s.startDiscovery(state, candidates)
			}
		}
	}

	if idp == "" {
		if s.cfg.DiscoURL != "" {
			return s.startDiscovery(state, nil)
		}
		// No discovery service: usable only when exactly one IdP is known.
		known, err := s.metadata.GetList(domain.MetadataSetIdPRemote)
		if err != nil {
			return nil, domain.CollaboratorError("metadata provider", err)
		}
		if len(known) != 1 {
			return nil, domain.ConfigError("sp auth source: no IdP pinned, no discovery service, and %d IdPs known", len(known))
		}
		for entityID := range known {
			idp = entityID
		}
	}

	return s.startSSO(state, idp)
}

// knownFrom intersects an IDPList with the known remote IdPs, preserving the
// list's order.
func (s *SPAuthSource) knownFrom(idpList []string) ([]string, error) {
	known, err := s.metadata.GetList(domain.MetadataSetIdPRemote)
	if err != nil {
		return nil, domain.CollaboratorError("metadata provider", err)
	}
	var candidates []string
	for _, entityID := range idpList {
		if _, ok := known[entityID]; ok {
			candidates = append(candidates, entityID)
		}
	}
	return candidates, nil
}

// startDiscovery persists the flow and redirects to the discovery service.
// candidates, when non-empty, restricts the discovery UI's choice.
func (s *SPAuthSource) startDiscovery(state domain.AuthState, candidates []string) (*Response, error) {
	if s.cfg.DiscoURL == "" {
		return nil, domain.NoSupportedIDPError()
	}

	saved := state.Copy()
	if len(candidates) > 0 {
		saved[StateKeyIDPList] = candidates
	}
	id, err := s.states.Save(saved, StageDiscovery, true)
	if err != nil {
		return nil, err
	}

	s.logger.Info("redirecting to IdP discovery",
		zap.String("disco_url", s.cfg.DiscoURL),
		zap.String("state_id", string(id)))

	return &Response{
		Kind:        ResponseDiscovery,
		RedirectURL: discoveryURL(s.cfg.DiscoURL, s.cfg.EntityID, id),
		StateID:     id,
	}, nil
}

// ResumeDiscovery continues a flow after the discovery service chose an IdP.
// The caller has loaded the state with StageDiscovery.
func (s *SPAuthSource) ResumeDiscovery(state domain.AuthState, idpEntityID string) (*Response, error) {
	if idpEntityID == "" {
		return nil, domain.AssertionError("", "discovery returned no IdP")
	}
	if idpList := state.Strings(StateKeyIDPList); len(idpList) > 0 && !contains(idpList, idpEntityID) {
		return nil, domain.NoAvailableIDPError()
	}
	return s.startSSO(state, idpEntityID)
}

// startSSO builds and sends the AuthnRequest to the chosen IdP.
func (s *SPAuthSource) startSSO(state domain.AuthState, idpEntityID string) (*Response, error) {
	idpMeta, err := s.idpMetadata(idpEntityID)
	if err != nil {
		return nil, err
	}

	opts, err := s.buildAuthnRequestOptions(state, idpMeta)
	if err != nil {
		return nil, err
	}

	saved := state.Copy()
	saved[StateKeyExpectedIssuer] = idpEntityID
	id, err := s.states.Save(saved, StageSSOSent, true)
	if err != nil {
		return nil, err
	}
	opts.RelayState = string(id)

	msg, err := s.builder.BuildAuthnRequest(s.spMeta, idpMeta, opts)
	if err != nil {
		s.recordFlow(idpEntityID, "build_failed")
		return nil, err
	}

	s.recordFlow(idpEntityID, "request_sent")
	s.logger.Info("authentication request sent",
		zap.String("idp", idpEntityID),
		zap.String("binding", msg.Binding),
		zap.String("state_id", string(id)))

	return &Response{Kind: ResponseSendToIdP, Message: msg, StateID: id}, nil
}

// buildAuthnRequestOptions assembles the protocol parameters for one
// AuthnRequest from state, SP metadata and IdP metadata.
func (s *SPAuthSource) buildAuthnRequestOptions(state domain.AuthState, idpMeta *domain.EntityMetadata) (ports.AuthnRequestOptions, error) {
	opts := ports.AuthnRequestOptions{
		ACSURL:     s.cfg.ACSURL,
		ForceAuthn: state.Bool(StateKeyForceAuthn, false),
		IsPassive:  state.Bool(StateKeyIsPassive, false),
	}

	rac, err := s.requestedAuthnContext(state, idpMeta)
	if err != nil {
		return opts, err
	}
	opts.RequestedAuthnContext = rac

	if policy := state.Map(StateKeyNameIDPolicy); policy != nil {
		format, _ := policy["format"].(string)
		allowCreate, _ := policy["allowcreate"].(bool)
		opts.NameIDPolicy = &domain.NameIDPolicy{Format: format, AllowCreate: allowCreate}
	}

	// Scoping is omitted entirely when disabled at either the IdP or SP
	// level. This is a privacy control, not cosmetic.
	if !s.spMeta.OptionalBool("disable_scoping", false) && !idpMeta.OptionalBool("disable_scoping", false) {
		scoping := &domain.Scoping{
			IDPList:      state.Strings(StateKeyIDPList),
			RequesterIDs: state.Strings("saml:RequesterID"),
		}
		if state.Has(StateKeyProxyCount) {
			count := state.Int(StateKeyProxyCount, 0) - 1
			scoping.ProxyCount = &count
		}
		if !scoping.Empty() {
			opts.Scoping = scoping
		}
	}

	// State override takes priority over SP-metadata-configured defaults.
	if ext := state.Strings(StateKeyExtensions); len(ext) > 0 {
		opts.Extensions = ext
	} else {
		opts.Extensions = s.spMeta.OptionalStrings("extensions")
	}

	return opts, nil
}

// requestedAuthnContext resolves the RequestedAuthnContext by priority:
// explicit IdP-metadata override, then state override, then the value proxied
// through from the inbound request. Comparison values are validated against
// the enumerated SAML set wherever they come from.
func (s *SPAuthSource) requestedAuthnContext(state domain.AuthState, idpMeta *domain.EntityMetadata) (*domain.RequestedAuthnContext, error) {
	if classRefs := idpMeta.OptionalStrings("AuthnContextClassRef"); len(classRefs) > 0 {
		comparison := idpMeta.OptionalString("AuthnContextComparison", "")
		if err := domain.ValidateAuthnContextComparison(comparison); err != nil {
			return nil, domain.ConfigError("IdP metadata %s: %v", idpMeta.EntityID(), err)
		}
		return &domain.RequestedAuthnContext{ClassRefs: classRefs, Comparison: comparison}, nil
	}

	if classRefs := state.Strings(StateKeyAuthnContextClassRef); len(classRefs) > 0 {
		comparison := state.String(StateKeyAuthnContextComparison, "")
		if err := domain.ValidateAuthnContextComparison(comparison); err != nil {
			return nil, domain.ConfigError("state override: %v", err)
		}
		return &domain.RequestedAuthnContext{ClassRefs: classRefs, Comparison: comparison}, nil
	}

	if proxied := state.Map(StateKeyProxiedAuthnContext); proxied != nil {
		classRefs := domain.AuthState(proxied).Strings("classrefs")
		comparison := domain.AuthState(proxied).String("comparison", "")
		if err := domain.ValidateAuthnContextComparison(comparison); err != nil {
			return nil, domain.ConfigError("proxied request: %v", err)
		}
		if len(classRefs) > 0 {
			return &domain.RequestedAuthnContext{ClassRefs: classRefs, Comparison: comparison}, nil
		}
	}

	return nil, nil
}

func (s *SPAuthSource) idpMetadata(entityID string) (*domain.EntityMetadata, error) {
	idpMeta, err := s.metadata.GetMetadata(entityID, domain.MetadataSetIdPRemote)
	if err != nil {
		if errors.Is(err, ports.ErrEntityNotFound) {
			return nil, domain.ConfigError("unknown identity provider %q", entityID)
		}
		return nil, domain.CollaboratorError("metadata provider", err)
	}
	return idpMeta, nil
}

func (s *SPAuthSource) recordFlow(idp, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordAuthnFlow(idp, outcome)
	}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
