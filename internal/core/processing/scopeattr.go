package processing

import (
	"gopkg.in/yaml.v3"

	"github.com/philiph/saml-fed/internal/core/domain"
)

func init() {
	RegisterFilter("core:ScopeAttribute", newScopeAttribute)
}

type scopeAttributeConfig struct {
	// ScopeAttribute is the attribute the scope is extracted from: the part
	// after "@" of its first value, or the whole value when there is no "@".
	ScopeAttribute string `yaml:"scopeAttribute"`

	// SourceAttribute provides the values to be scoped.
	SourceAttribute string `yaml:"sourceAttribute"`

	// TargetAttribute receives the scoped values.
	TargetAttribute string `yaml:"targetAttribute"`

	// OnlyIfEmpty skips the filter when the target is already populated.
	OnlyIfEmpty bool `yaml:"onlyIfEmpty"`
}

// scopeAttribute derives a new attribute by appending "@scope" to every value
// of a source attribute.
type scopeAttribute struct {
	cfg scopeAttributeConfig
}

func newScopeAttribute(node *yaml.Node, _ Deps) (Filter, error) {
	var cfg scopeAttributeConfig
	if err := node.Decode(&cfg); err != nil {
		return nil, domain.ConfigError("core:ScopeAttribute: invalid configuration: %v", err)
	}
	if cfg.ScopeAttribute == "" || cfg.SourceAttribute == "" || cfg.TargetAttribute == "" {
		return nil, domain.ConfigError("core:ScopeAttribute: scopeAttribute, sourceAttribute and targetAttribute are all required")
	}
	return &scopeAttribute{cfg: cfg}, nil
}

func (f *scopeAttribute) Name() string { return "core:ScopeAttribute" }

func (f *scopeAttribute) Process(req *Request) (*Suspension, error) {
	if f.cfg.OnlyIfEmpty && len(req.Attributes[f.cfg.TargetAttribute]) > 0 {
		return nil, nil
	}

	scopeSource := req.Attributes.First(f.cfg.ScopeAttribute)
	if scopeSource == "" {
		return nil, nil
	}
	scope := domain.ExtractScope(scopeSource)

	source, ok := req.Attributes[f.cfg.SourceAttribute]
	if !ok {
		return nil, nil
	}

	scoped := make([]string, len(source))
	for i, v := range source {
		scoped[i] = v + "@" + scope
	}
	req.Attributes.Append(f.cfg.TargetAttribute, scoped...)
	return nil, nil
}
