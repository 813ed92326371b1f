// Package identifiers provides the pseudonymous identifier generation
// filters: SubjectID, PairwiseID and the legacy TargetedID. The value
// algorithms are small but security-critical; they are deterministic given
// the secret salt and never emit a degraded identifier on bad input.
package identifiers

import (
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/processing"
)

// Attribute names from the SAML subject identifier attribute profile.
const (
	SubjectIDAttribute  = "urn:oasis:names:tc:SAML:attribute:subject-id"
	PairwiseIDAttribute = "urn:oasis:names:tc:SAML:attribute:pairwise-id"
)

func init() {
	processing.RegisterFilter("saml:SubjectID", newSubjectID)
}

type subjectIDConfig struct {
	IdentifyingAttribute string `yaml:"identifyingAttribute"`
	ScopeAttribute       string `yaml:"scopeAttribute"`
}

// subjectID derives the subject-id attribute from an identifying attribute
// and a scope attribute.
type subjectID struct {
	identifyingAttribute string
	scopeAttribute       string
	logger               *zap.Logger
}

func newSubjectID(node *yaml.Node, deps processing.Deps) (processing.Filter, error) {
	var cfg subjectIDConfig
	if err := node.Decode(&cfg); err != nil {
		return nil, domain.ConfigError("saml:SubjectID: invalid configuration: %v", err)
	}
	if cfg.IdentifyingAttribute == "" || cfg.ScopeAttribute == "" {
		return nil, domain.ConfigError("saml:SubjectID: identifyingAttribute and scopeAttribute are required")
	}
	return &subjectID{
		identifyingAttribute: cfg.IdentifyingAttribute,
		scopeAttribute:       cfg.ScopeAttribute,
		logger:               deps.Logger,
	}, nil
}

func (f *subjectID) Name() string { return "saml:SubjectID" }

func (f *subjectID) Process(req *processing.Request) (*processing.Suspension, error) {
	identifier := req.Attributes.First(f.identifyingAttribute)
	if identifier == "" {
		return nil, domain.AssertionError(f.identifyingAttribute,
			"saml:SubjectID: identifying attribute %q is missing or empty", f.identifyingAttribute)
	}

	scope := req.Attributes.First(f.scopeAttribute)
	value, err := SubjectIDValue(identifier, scope)
	if err != nil {
		return nil, err
	}

	// The stricter global-uniqueness pattern is a heuristic: short
	// identifiers or scopes fail it without being invalid. Warn, don't block.
	if !domain.MatchesSubjectIDProfile(value) {
		log := f.logger
		if log == nil {
			log = zap.NewNop()
		}
		log.Warn("generated subject-id does not satisfy the global uniqueness pattern",
			zap.String("attribute", SubjectIDAttribute))
	}

	req.Attributes[SubjectIDAttribute] = []string{value}
	return nil, nil
}

// SubjectIDValue computes the subject-id value: the lowercased concatenation
// of the identifying value, "@", and the scope. Fails when the scope is
// missing or malformed.
func SubjectIDValue(identifier, scope string) (string, error) {
	if identifier == "" {
		return "", domain.AssertionError("", "subject-id requires a non-empty identifying value")
	}
	if !domain.ValidScope(scope) {
		return "", domain.AssertionError("", "subject-id scope %q is missing or malformed", scope)
	}
	return strings.ToLower(identifier + "@" + scope), nil
}
