package processing

import (
	"gopkg.in/yaml.v3"

	"github.com/philiph/saml-fed/internal/core/domain"
)

func init() {
	RegisterFilter("core:AttributeAdd", newAttributeAdd)
}

type attributeAddConfig struct {
	// Replace replaces existing values wholesale instead of appending.
	Replace    bool                  `yaml:"replace"`
	Attributes map[string]StringList `yaml:"attributes"`
}

// attributeAdd adds configured name/value pairs to the attribute set. The
// default mode merges by positional concatenation; deduplication is not
// guaranteed.
type attributeAdd struct {
	replace    bool
	attributes map[string][]string
}

func newAttributeAdd(node *yaml.Node, _ Deps) (Filter, error) {
	var cfg attributeAddConfig
	if err := node.Decode(&cfg); err != nil {
		return nil, domain.ConfigError("core:AttributeAdd: invalid configuration: %v", err)
	}
	if len(cfg.Attributes) == 0 {
		return nil, domain.ConfigError("core:AttributeAdd: no attributes configured")
	}

	attrs := make(map[string][]string, len(cfg.Attributes))
	for name, values := range cfg.Attributes {
		if name == "" {
			return nil, domain.ConfigError("core:AttributeAdd: empty attribute name")
		}
		if len(values) == 0 {
			return nil, domain.ConfigError("core:AttributeAdd: attribute %q has no values", name)
		}
		for _, v := range values {
			if v == "" {
				return nil, domain.ConfigError("core:AttributeAdd: attribute %q has an empty value", name)
			}
		}
		attrs[name] = append([]string(nil), values...)
	}

	return &attributeAdd{replace: cfg.Replace, attributes: attrs}, nil
}

func (f *attributeAdd) Name() string { return "core:AttributeAdd" }

func (f *attributeAdd) Process(req *Request) (*Suspension, error) {
	for name, values := range f.attributes {
		if f.replace {
			req.Attributes[name] = append([]string(nil), values...)
			continue
		}
		req.Attributes.Append(name, values...)
	}
	return nil, nil
}
