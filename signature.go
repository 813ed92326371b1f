package samlfed

import (
	"github.com/philiph/saml-fed/internal/adapters/driven/binding"
	"github.com/philiph/saml-fed/internal/adapters/driven/secrets"
	"github.com/philiph/saml-fed/internal/adapters/driven/signature"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// SignatureVerifier is the port interface for XML signature verification.
type SignatureVerifier = ports.SignatureVerifier

// SaltProvider is the port interface for the identifier derivation salt.
type SaltProvider = ports.SaltProvider

// Re-export signature verifier implementations
type XMLDsigVerifier = signature.XMLDsigVerifier
type NoopVerifier = signature.NoopVerifier

// Re-export the crewjam-backed message builder
type CrewjamBuilder = binding.CrewjamBuilder

var (
	NewXMLDsigVerifier = signature.NewXMLDsigVerifier
	NewNoopVerifier    = signature.NewNoopVerifier
	LoadCertificate    = signature.LoadCertificate

	NewCrewjamBuilder = binding.NewCrewjamBuilder

	NewStaticSaltProvider = secrets.NewStaticSaltProvider
	NewCachedSaltProvider = secrets.NewCachedSaltProvider
)
