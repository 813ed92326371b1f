package samlfed

import (
	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/identifiers"
)

// Re-export identifier attribute names
const (
	SubjectIDAttribute  = identifiers.SubjectIDAttribute
	PairwiseIDAttribute = identifiers.PairwiseIDAttribute
	TargetedIDAttribute = identifiers.TargetedIDAttribute
)

// Re-export identifier derivation functions
var (
	SubjectIDValue  = identifiers.SubjectIDValue
	PairwiseIDValue = identifiers.PairwiseIDValue
	TargetedIDValue = identifiers.TargetedIDValue

	ValidScope   = domain.ValidScope
	ExtractScope = domain.ExtractScope
)
