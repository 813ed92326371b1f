package processing

import (
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/philiph/saml-fed/internal/core/domain"
)

func init() {
	RegisterFilter("core:AttributeAlter", newAttributeAlter)
}

type attributeAlterConfig struct {
	Subject     string `yaml:"subject"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`

	// Replace switches to whole-list replacement: when the pattern matches
	// any value, the attribute's value list becomes the literal replacement.
	Replace bool `yaml:"replace"`

	// Remove drops matching values instead of rewriting them. Mutually
	// exclusive with Replace.
	Remove bool `yaml:"remove"`
}

// attributeAlter performs a regex find/replace on a named attribute.
type attributeAlter struct {
	subject     string
	pattern     *regexp.Regexp
	replacement string
	replace     bool
	remove      bool
}

func newAttributeAlter(node *yaml.Node, _ Deps) (Filter, error) {
	var cfg attributeAlterConfig
	if err := node.Decode(&cfg); err != nil {
		return nil, domain.ConfigError("core:AttributeAlter: invalid configuration: %v", err)
	}
	if cfg.Subject == "" {
		return nil, domain.ConfigError("core:AttributeAlter: missing subject attribute")
	}
	if cfg.Pattern == "" {
		return nil, domain.ConfigError("core:AttributeAlter: missing pattern")
	}
	if cfg.Replace && cfg.Remove {
		return nil, domain.ConfigError("core:AttributeAlter: replace and remove are mutually exclusive")
	}

	// A malformed administrator-supplied regex is a hard configuration
	// error, not something to log and skip at request time.
	pattern, err := regexp.Compile(cfg.Pattern)
	if err != nil {
		return nil, domain.ConfigError("core:AttributeAlter: invalid pattern %q: %v", cfg.Pattern, err)
	}

	return &attributeAlter{
		subject:     cfg.Subject,
		pattern:     pattern,
		replacement: cfg.Replacement,
		replace:     cfg.Replace,
		remove:      cfg.Remove,
	}, nil
}

func (f *attributeAlter) Name() string { return "core:AttributeAlter" }

func (f *attributeAlter) Process(req *Request) (*Suspension, error) {
	values, ok := req.Attributes[f.subject]
	if !ok {
		return nil, nil
	}

	switch {
	case f.replace:
		for _, v := range values {
			if f.pattern.MatchString(v) {
				req.Attributes[f.subject] = []string{f.replacement}
				break
			}
		}
	case f.remove:
		kept := values[:0]
		for _, v := range values {
			if !f.pattern.MatchString(v) {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			delete(req.Attributes, f.subject)
		} else {
			req.Attributes[f.subject] = kept
		}
	default:
		for i, v := range values {
			values[i] = f.pattern.ReplaceAllString(v, f.replacement)
		}
	}
	return nil, nil
}
