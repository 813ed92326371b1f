// Package signature verifies XML signatures on inbound SAML documents.
package signature

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/beevik/etree"
	dsig "github.com/russellhaering/goxmldsig"
	"go.uber.org/zap"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// XMLDsigVerifier verifies enveloped XML signatures against trusted
// certificates using goxmldsig.
type XMLDsigVerifier struct {
	certStore dsig.X509CertificateStore
	logger    *zap.Logger
}

// NewXMLDsigVerifier creates a verifier with one or more trust anchor
// certificates. Multiple anchors support certificate rollover.
func NewXMLDsigVerifier(certs ...*x509.Certificate) (*XMLDsigVerifier, error) {
	if len(certs) == 0 {
		return nil, domain.ConfigError("signature verifier needs at least one trust anchor certificate")
	}
	return &XMLDsigVerifier{
		certStore: &dsig.MemoryX509CertificateStore{Roots: certs},
		logger:    zap.NewNop(),
	}, nil
}

// WithLogger sets a logger for verification events.
func (v *XMLDsigVerifier) WithLogger(logger *zap.Logger) *XMLDsigVerifier {
	v.logger = logger
	return v
}

// Verify validates the XML signature and returns the validated XML bytes.
// The returned bytes are re-serialized from the validated element, which
// defends against signature wrapping.
func (v *XMLDsigVerifier) Verify(data []byte) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse signed XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("empty XML document")
	}

	ctx := dsig.NewDefaultValidationContext(v.certStore)
	validated, err := ctx.Validate(root)
	if err != nil {
		return nil, fmt.Errorf("signature verification failed: %w", err)
	}

	v.logger.Debug("signature verified", zap.String("element", validated.Tag))

	validatedDoc := etree.NewDocument()
	validatedDoc.SetRoot(validated)
	result, err := validatedDoc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize validated XML: %w", err)
	}
	return result, nil
}

// LoadCertificate loads an X.509 certificate from a PEM file.
func LoadCertificate(path string) (*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read certificate file: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}
	return cert, nil
}

// Ensure XMLDsigVerifier implements ports.SignatureVerifier
var _ ports.SignatureVerifier = (*XMLDsigVerifier)(nil)
