package processing

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/philiph/saml-fed/internal/core/domain"
)

func init() {
	RegisterFilter("core:AttributeLimit", newAttributeLimit)
}

// limitEntry is one allow-list entry: a bare attribute name, or a name plus a
// per-attribute value constraint (regex list, case-insensitive set, or plain
// set intersection).
type limitEntry struct {
	Name       string
	Values     []string
	Regex      []string
	IgnoreCase bool
}

// UnmarshalYAML accepts either a scalar (bare name) or a mapping.
func (e *limitEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&e.Name)
	}
	var raw struct {
		Name       string     `yaml:"name"`
		Values     StringList `yaml:"values"`
		Regex      StringList `yaml:"regex"`
		IgnoreCase bool       `yaml:"ignoreCase"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	e.Name = raw.Name
	e.Values = raw.Values
	e.Regex = raw.Regex
	e.IgnoreCase = raw.IgnoreCase
	return nil
}

type attributeLimitConfig struct {
	// Default falls back to the destination (or source) entity metadata's
	// "attributes" option when no explicit allow-list is configured.
	Default    bool         `yaml:"default"`
	Attributes []limitEntry `yaml:"attributes"`
}

type valueConstraint struct {
	regexes    []*regexp.Regexp
	values     map[string]bool
	ignoreCase bool
}

// attributeLimit restricts the attribute set to an allow-list with optional
// per-attribute value filtering.
type attributeLimit struct {
	useMetadataDefault bool
	allowed            map[string]*valueConstraint // nil constraint = keep all values
}

func newAttributeLimit(node *yaml.Node, _ Deps) (Filter, error) {
	var cfg attributeLimitConfig
	if err := node.Decode(&cfg); err != nil {
		return nil, domain.ConfigError("core:AttributeLimit: invalid configuration: %v", err)
	}

	allowed := make(map[string]*valueConstraint, len(cfg.Attributes))
	for _, entry := range cfg.Attributes {
		if entry.Name == "" {
			return nil, domain.ConfigError("core:AttributeLimit: allow-list entry without a name")
		}
		if len(entry.Values) > 0 && len(entry.Regex) > 0 {
			return nil, domain.ConfigError("core:AttributeLimit: attribute %q mixes values and regex constraints", entry.Name)
		}

		if len(entry.Regex) == 0 && len(entry.Values) == 0 {
			allowed[entry.Name] = nil
			continue
		}

		constraint := &valueConstraint{ignoreCase: entry.IgnoreCase}
		for _, expr := range entry.Regex {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, domain.ConfigError("core:AttributeLimit: attribute %q has invalid regex %q: %v", entry.Name, expr, err)
			}
			constraint.regexes = append(constraint.regexes, re)
		}
		if len(entry.Values) > 0 {
			constraint.values = make(map[string]bool, len(entry.Values))
			for _, v := range entry.Values {
				if entry.IgnoreCase {
					v = strings.ToLower(v)
				}
				constraint.values[v] = true
			}
		}
		allowed[entry.Name] = constraint
	}

	return &attributeLimit{
		useMetadataDefault: cfg.Default,
		allowed:            allowed,
	}, nil
}

func (f *attributeLimit) Name() string { return "core:AttributeLimit" }

func (f *attributeLimit) Process(req *Request) (*Suspension, error) {
	allowed := f.allowed
	if len(allowed) == 0 {
		if !f.useMetadataDefault {
			return nil, nil
		}
		names := metadataAllowList(req)
		if names == nil {
			// No allow-list anywhere: nothing to limit.
			return nil, nil
		}
		allowed = make(map[string]*valueConstraint, len(names))
		for _, name := range names {
			allowed[name] = nil
		}
	}

	for name, values := range req.Attributes {
		constraint, ok := allowed[name]
		if !ok {
			delete(req.Attributes, name)
			continue
		}
		if constraint == nil {
			continue
		}

		kept := make([]string, 0, len(values))
		for _, v := range values {
			if constraint.matches(v) {
				kept = append(kept, v)
			}
		}
		// An attribute filtered to zero remaining values is removed entirely.
		if len(kept) == 0 {
			delete(req.Attributes, name)
		} else {
			req.Attributes[name] = kept
		}
	}
	return nil, nil
}

func (c *valueConstraint) matches(value string) bool {
	for _, re := range c.regexes {
		if re.MatchString(value) {
			return true
		}
	}
	if c.values != nil {
		if c.ignoreCase {
			value = strings.ToLower(value)
		}
		return c.values[value]
	}
	return false
}

// metadataAllowList reads the "attributes" option from the destination
// metadata, falling back to the source. Returns nil when neither defines one.
func metadataAllowList(req *Request) []string {
	if req.Destination != nil {
		if names := req.Destination.OptionalStrings("attributes"); names != nil {
			return names
		}
	}
	if req.Source != nil {
		if names := req.Source.OptionalStrings("attributes"); names != nil {
			return names
		}
	}
	return nil
}
