package identifiers

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
	"github.com/philiph/saml-fed/internal/core/processing"
)

func init() {
	processing.RegisterFilter("saml:PairwiseID", newPairwiseID)
}

// StateKeyRequesterID holds the proxied requester entity IDs, innermost
// first, when this deployment acts as a proxy.
const StateKeyRequesterID = "saml:RequesterID"

type pairwiseIDConfig struct {
	IdentifyingAttribute string `yaml:"identifyingAttribute"`
	ScopeAttribute       string `yaml:"scopeAttribute"`
}

// pairwiseID derives the pairwise-id attribute: a salted hash that is stable
// per user and per relying SP, and unlinkable across SPs.
type pairwiseID struct {
	identifyingAttribute string
	scopeAttribute       string
	salt                 ports.SaltProvider
}

func newPairwiseID(node *yaml.Node, deps processing.Deps) (processing.Filter, error) {
	var cfg pairwiseIDConfig
	if err := node.Decode(&cfg); err != nil {
		return nil, domain.ConfigError("saml:PairwiseID: invalid configuration: %v", err)
	}
	if cfg.IdentifyingAttribute == "" || cfg.ScopeAttribute == "" {
		return nil, domain.ConfigError("saml:PairwiseID: identifyingAttribute and scopeAttribute are required")
	}
	if deps.Salt == nil {
		return nil, domain.ConfigError("saml:PairwiseID: no secret salt provider configured")
	}
	return &pairwiseID{
		identifyingAttribute: cfg.IdentifyingAttribute,
		scopeAttribute:       cfg.ScopeAttribute,
		salt:                 deps.Salt,
	}, nil
}

func (f *pairwiseID) Name() string { return "saml:PairwiseID" }

func (f *pairwiseID) Process(req *processing.Request) (*processing.Suspension, error) {
	userID := req.Attributes.First(f.identifyingAttribute)
	if userID == "" {
		return nil, domain.AssertionError(f.identifyingAttribute,
			"saml:PairwiseID: identifying attribute %q is missing or empty", f.identifyingAttribute)
	}

	salt, err := f.salt.SecretSalt()
	if err != nil {
		return nil, err
	}

	scope := req.Attributes.First(f.scopeAttribute)
	value, err := PairwiseIDValue(salt, userID, relyingEntityID(req), scope)
	if err != nil {
		return nil, err
	}

	req.Attributes[PairwiseIDAttribute] = []string{value}
	return nil, nil
}

// relyingEntityID is the entity the identifier must be pairwise with: the
// proxied requester when present, otherwise the direct SP.
func relyingEntityID(req *processing.Request) string {
	if requesters := req.State.Strings(StateKeyRequesterID); len(requesters) > 0 {
		return requesters[0]
	}
	if req.Destination != nil {
		return req.Destination.EntityID()
	}
	return ""
}

// PairwiseIDValue computes the pairwise-id value:
// lowercase(hex(sha256(salt|userID|spEntityID)) + "@" + scope).
func PairwiseIDValue(salt, userID, spEntityID, scope string) (string, error) {
	if userID == "" {
		return "", domain.AssertionError("", "pairwise-id requires a non-empty user identifier")
	}
	if spEntityID == "" {
		return "", domain.AssertionError("", "pairwise-id requires a relying party entity ID")
	}
	if !domain.ValidScope(scope) {
		return "", domain.AssertionError("", "pairwise-id scope %q is missing or malformed", scope)
	}

	sum := sha256.Sum256([]byte(salt + "|" + userID + "|" + spEntityID))
	return strings.ToLower(hex.EncodeToString(sum[:]) + "@" + scope), nil
}
