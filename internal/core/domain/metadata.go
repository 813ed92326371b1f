package domain

// SAML 2.0 binding URIs used for endpoint selection.
const (
	BindingHTTPRedirect = "urn:oasis:names:tc:SAML:2.0:bindings:HTTP-Redirect"
	BindingHTTPPost     = "urn:oasis:names:tc:SAML:2.0:bindings:HTTP-POST"
	BindingSOAP         = "urn:oasis:names:tc:SAML:2.0:bindings:SOAP"
)

// Metadata set names, mirroring the federation configuration layout.
const (
	MetadataSetSPRemote  = "saml20-sp-remote"
	MetadataSetIdPRemote = "saml20-idp-remote"
	MetadataSetSPHosted  = "saml20-sp-hosted"
	MetadataSetIdPHosted = "saml20-idp-hosted"
)

// Endpoint describes a single protocol endpoint of a SAML entity.
type Endpoint struct {
	Binding          string
	Location         string
	ResponseLocation string
	Index            int
	IsDefault        bool
}

// EntityMetadata is a read-only configuration view of one SAML entity. It is
// sourced externally and treated as an immutable value for the duration of a
// request. Free-form options are read through typed accessors with defaults,
// replacing ad hoc probing of nested maps.
type EntityMetadata struct {
	entityID string
	set      string
	options  map[string]any

	// Endpoints, keyed by service. Order matters for binding preference.
	SingleSignOnServices      []Endpoint
	SingleLogoutServices      []Endpoint
	AssertionConsumerServices []Endpoint
}

// NewEntityMetadata creates an EntityMetadata view. options may be nil.
func NewEntityMetadata(entityID, set string, options map[string]any) *EntityMetadata {
	if options == nil {
		options = map[string]any{}
	}
	return &EntityMetadata{entityID: entityID, set: set, options: options}
}

// EntityID returns the entity identifier.
func (m *EntityMetadata) EntityID() string {
	return m.entityID
}

// Set returns the metadata set this entity was loaded from, or "" when the
// entity was constructed without one.
func (m *EntityMetadata) Set() string {
	return m.set
}

// Has reports whether the named option is present.
func (m *EntityMetadata) Has(key string) bool {
	_, ok := m.options[key]
	return ok
}

// OptionalString returns the named string option, or def when absent or of
// the wrong type.
func (m *EntityMetadata) OptionalString(key, def string) string {
	if v, ok := m.options[key].(string); ok {
		return v
	}
	return def
}

// OptionalBool returns the named boolean option, or def when absent.
func (m *EntityMetadata) OptionalBool(key string, def bool) bool {
	if v, ok := m.options[key].(bool); ok {
		return v
	}
	return def
}

// OptionalInt returns the named integer option, or def when absent. Accepts
// the float64 form produced by JSON deserialization.
func (m *EntityMetadata) OptionalInt(key string, def int) int {
	switch v := m.options[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// OptionalStrings returns the named string-list option, or nil when absent.
func (m *EntityMetadata) OptionalStrings(key string) []string {
	switch v := m.options[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return nil
}

// OptionalStringMap returns the named map option, or nil when absent.
func (m *EntityMetadata) OptionalStringMap(key string) map[string]any {
	if v, ok := m.options[key].(map[string]any); ok {
		return v
	}
	return nil
}

// Snapshot serializes the metadata view into plain maps for inclusion in an
// AuthState blob. FromMetadataSnapshot reverses it.
func (m *EntityMetadata) Snapshot() map[string]any {
	return map[string]any{
		"entityid": m.entityID,
		"set":      m.set,
		"options":  m.options,
		"sso":      endpointsToRaw(m.SingleSignOnServices),
		"slo":      endpointsToRaw(m.SingleLogoutServices),
		"acs":      endpointsToRaw(m.AssertionConsumerServices),
	}
}

// FromMetadataSnapshot rebuilds an EntityMetadata from a Snapshot map.
// Returns nil for a nil input.
func FromMetadataSnapshot(raw map[string]any) *EntityMetadata {
	if raw == nil {
		return nil
	}
	options, _ := raw["options"].(map[string]any)
	entityID, _ := raw["entityid"].(string)
	set, _ := raw["set"].(string)
	m := NewEntityMetadata(entityID, set, options)
	m.SingleSignOnServices = endpointsFromRaw(raw["sso"])
	m.SingleLogoutServices = endpointsFromRaw(raw["slo"])
	m.AssertionConsumerServices = endpointsFromRaw(raw["acs"])
	return m
}

func endpointsToRaw(eps []Endpoint) []any {
	out := make([]any, len(eps))
	for i, ep := range eps {
		out[i] = map[string]any{
			"binding":  ep.Binding,
			"location": ep.Location,
			"response": ep.ResponseLocation,
			"index":    ep.Index,
			"default":  ep.IsDefault,
		}
	}
	return out
}

func endpointsFromRaw(v any) []Endpoint {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Endpoint, 0, len(list))
	for _, item := range list {
		raw, ok := item.(map[string]any)
		if !ok {
			continue
		}
		ep := Endpoint{}
		ep.Binding, _ = raw["binding"].(string)
		ep.Location, _ = raw["location"].(string)
		ep.ResponseLocation, _ = raw["response"].(string)
		switch idx := raw["index"].(type) {
		case int:
			ep.Index = idx
		case float64:
			ep.Index = int(idx)
		}
		ep.IsDefault, _ = raw["default"].(bool)
		out = append(out, ep)
	}
	return out
}

// EndpointByBindings returns the first endpoint from candidates whose binding
// matches the preference order. Returns nil when no candidate matches.
func EndpointByBindings(candidates []Endpoint, preference ...string) *Endpoint {
	for _, binding := range preference {
		for i := range candidates {
			if candidates[i].Binding == binding {
				ep := candidates[i]
				return &ep
			}
		}
	}
	return nil
}
