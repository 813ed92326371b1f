package processing

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/philiph/saml-fed/internal/core/domain"
)

func init() {
	RegisterFilter("core:CardinalitySingle", newCardinalitySingle)
}

// StateKeyErrorAttributes is where cardinalitySingle records the violating
// attributes before suspending: a map of attribute name to [count, bound].
const StateKeyErrorAttributes = "core:cardinality:errorAttributes"

// cardinalityBound is the human-readable constraint recorded per violation.
const cardinalityBound = "0 ≤ n ≤ 1"

// Auto-correction modes. The empty mode suspends on violation.
const (
	correctNone      = ""
	correctTakeFirst = "takeFirst"
	correctFlatten   = "flatten"
)

type cardinalitySingleConfig struct {
	SingleValued []string `yaml:"singleValued"`

	// AutoCorrect avoids suspension: "takeFirst" keeps the first value,
	// "flatten" joins all values with FlattenWith.
	AutoCorrect string `yaml:"autoCorrect"`
	FlattenWith string `yaml:"flattenWith"`

	// ErrorURL is where the user is sent when the chain suspends on a
	// violation.
	ErrorURL string `yaml:"errorURL"`
}

// cardinalitySingle enforces an at-most-one-value policy per configured
// attribute. Violations never silently truncate: without an auto-correction
// mode the chain suspends and shows an explanatory page.
type cardinalitySingle struct {
	singleValued []string
	autoCorrect  string
	flattenWith  string
	errorURL     string
}

func newCardinalitySingle(node *yaml.Node, _ Deps) (Filter, error) {
	var cfg cardinalitySingleConfig
	if err := node.Decode(&cfg); err != nil {
		return nil, domain.ConfigError("core:CardinalitySingle: invalid configuration: %v", err)
	}
	if len(cfg.SingleValued) == 0 {
		return nil, domain.ConfigError("core:CardinalitySingle: no singleValued attributes configured")
	}
	switch cfg.AutoCorrect {
	case correctNone, correctTakeFirst, correctFlatten:
	default:
		return nil, domain.ConfigError("core:CardinalitySingle: unknown autoCorrect mode %q", cfg.AutoCorrect)
	}
	if cfg.AutoCorrect == correctNone && cfg.ErrorURL == "" {
		return nil, domain.ConfigError("core:CardinalitySingle: errorURL is required without autoCorrect")
	}

	flattenWith := cfg.FlattenWith
	if flattenWith == "" {
		flattenWith = " "
	}

	return &cardinalitySingle{
		singleValued: append([]string(nil), cfg.SingleValued...),
		autoCorrect:  cfg.AutoCorrect,
		flattenWith:  flattenWith,
		errorURL:     cfg.ErrorURL,
	}, nil
}

func (f *cardinalitySingle) Name() string { return "core:CardinalitySingle" }

func (f *cardinalitySingle) Process(req *Request) (*Suspension, error) {
	violations := map[string]any{}

	for _, name := range f.singleValued {
		values, ok := req.Attributes[name]
		if !ok || len(values) <= 1 {
			continue
		}

		switch f.autoCorrect {
		case correctTakeFirst:
			req.Attributes[name] = values[:1]
		case correctFlatten:
			req.Attributes[name] = []string{strings.Join(values, f.flattenWith)}
		default:
			violations[name] = []any{len(values), cardinalityBound}
		}
	}

	if len(violations) == 0 {
		return nil, nil
	}

	req.State[StateKeyErrorAttributes] = violations
	return &Suspension{RedirectURL: f.errorURL}, nil
}

// ViolationSummary renders the recorded violations for diagnostics, e.g.
// "mail: got 2, want 0 ≤ n ≤ 1". Values are never included.
func ViolationSummary(state domain.AuthState) string {
	raw := state.Map(StateKeyErrorAttributes)
	if raw == nil {
		return ""
	}
	parts := make([]string, 0, len(raw))
	for name, detail := range raw {
		if pair, ok := detail.([]any); ok && len(pair) == 2 {
			parts = append(parts, fmt.Sprintf("%s: got %v, want %v", name, pair[0], pair[1]))
		} else {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "; ")
}
