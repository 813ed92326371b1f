package processing

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/philiph/saml-fed/internal/core/domain"
)

func init() {
	RegisterFilter("core:AttributeMap", newAttributeMap)
}

type attributeMapConfig struct {
	// Duplicate keeps the original attribute alongside the renamed copy.
	Duplicate bool `yaml:"duplicate"`

	// MapFiles names built-in maps ("oid2name", "name2oid") or paths to YAML
	// files containing a flat from/to mapping. Applied in order, before the
	// inline renames.
	MapFiles []string `yaml:"mapfiles"`

	// Rename maps source attribute names to one or more target names.
	Rename map[string]StringList `yaml:"rename"`
}

// attributeMap renames or duplicates attributes per a static mapping.
type attributeMap struct {
	duplicate bool
	mapping   map[string][]string
}

func newAttributeMap(node *yaml.Node, _ Deps) (Filter, error) {
	var cfg attributeMapConfig
	if err := node.Decode(&cfg); err != nil {
		return nil, domain.ConfigError("core:AttributeMap: invalid configuration: %v", err)
	}

	mapping := make(map[string][]string)

	for _, name := range cfg.MapFiles {
		if builtin := domain.BuiltinAttributeMap(name); builtin != nil {
			for from, to := range builtin {
				mapping[from] = append(mapping[from], to)
			}
			continue
		}

		loaded, err := loadMapFile(name)
		if err != nil {
			return nil, err
		}
		for from, targets := range loaded {
			mapping[from] = append(mapping[from], targets...)
		}
	}

	for from, targets := range cfg.Rename {
		if from == "" {
			return nil, domain.ConfigError("core:AttributeMap: empty source attribute name")
		}
		if len(targets) == 0 {
			return nil, domain.ConfigError("core:AttributeMap: attribute %q maps to nothing", from)
		}
		mapping[from] = append(mapping[from], targets...)
	}

	if len(mapping) == 0 {
		return nil, domain.ConfigError("core:AttributeMap: no mapping configured")
	}

	return &attributeMap{duplicate: cfg.Duplicate, mapping: mapping}, nil
}

func loadMapFile(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ConfigError("core:AttributeMap: cannot read map file %q: %v", path, err)
	}
	var raw map[string]StringList
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, domain.ConfigError("core:AttributeMap: invalid map file %q: %v", path, err)
	}
	out := make(map[string][]string, len(raw))
	for from, to := range raw {
		out[from] = to
	}
	return out, nil
}

func (f *attributeMap) Name() string { return "core:AttributeMap" }

func (f *attributeMap) Process(req *Request) (*Suspension, error) {
	for from, targets := range f.mapping {
		values, ok := req.Attributes[from]
		if !ok {
			continue
		}

		for _, to := range targets {
			if to == from {
				continue
			}
			req.Attributes.Append(to, values...)
		}

		// Duplicate mode preserves the original name instead of removing it.
		if !f.duplicate {
			keep := false
			for _, to := range targets {
				if to == from {
					keep = true
					break
				}
			}
			if !keep {
				delete(req.Attributes, from)
			}
		}
	}
	return nil, nil
}
