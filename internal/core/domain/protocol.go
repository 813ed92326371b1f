package domain

import "fmt"

// AuthnContextComparison values defined by SAML 2.0 Core §3.3.2.2.1.
const (
	ComparisonExact   = "exact"
	ComparisonMinimum = "minimum"
	ComparisonMaximum = "maximum"
	ComparisonBetter  = "better"
)

var validComparisons = map[string]bool{
	"":                true, // defaults to "exact" per SAML spec
	ComparisonExact:   true,
	ComparisonMinimum: true,
	ComparisonMaximum: true,
	ComparisonBetter:  true,
}

// ValidateAuthnContextComparison validates the comparison value against the
// enumerated SAML 2.0 set. Returns an error for anything else.
func ValidateAuthnContextComparison(c string) error {
	if !validComparisons[c] {
		return fmt.Errorf("invalid AuthnContextComparison: %q (must be one of: exact, minimum, maximum, better, or empty)", c)
	}
	return nil
}

// RequestedAuthnContext requests specific authentication context classes.
type RequestedAuthnContext struct {
	ClassRefs  []string
	Comparison string
}

// NameIDPolicy controls the NameID format requested from the IdP.
type NameIDPolicy struct {
	Format      string
	AllowCreate bool
}

// Scoping restricts which IdPs may service a proxied request. A nil Scoping
// on an AuthnRequest means the element is omitted entirely; omission is a
// privacy control, not a cosmetic default.
type Scoping struct {
	IDPList      []string
	ProxyCount   *int
	RequesterIDs []string
}

// Empty reports whether the scoping carries no information and can be
// omitted from the request.
func (s *Scoping) Empty() bool {
	return s == nil || (len(s.IDPList) == 0 && s.ProxyCount == nil && len(s.RequesterIDs) == 0)
}

// Standard NameID format URIs.
const (
	NameIDFormatPersistent = "urn:oasis:names:tc:SAML:2.0:nameid-format:persistent"
	NameIDFormatTransient  = "urn:oasis:names:tc:SAML:2.0:nameid-format:transient"
)

// NameID is a minimal subject identifier value object, used where the core
// needs to carry a NameID without depending on a wire-format library.
type NameID struct {
	Format          string
	Value           string
	NameQualifier   string
	SPNameQualifier string
}
