package signature

import (
	"github.com/philiph/saml-fed/internal/core/ports"
)

// NoopVerifier is a pass-through verifier for development/testing.
// It returns the input unchanged without verification.
type NoopVerifier struct{}

// NewNoopVerifier creates a new NoopVerifier.
func NewNoopVerifier() *NoopVerifier {
	return &NoopVerifier{}
}

// Verify returns the input unchanged without verification.
func (v *NoopVerifier) Verify(data []byte) ([]byte, error) {
	return data, nil
}

// Ensure NoopVerifier implements ports.SignatureVerifier
var _ ports.SignatureVerifier = (*NoopVerifier)(nil)
