package ports

// SignatureVerifier verifies XML signatures on inbound SAML documents.
// This is a port interface - implementations are adapters.
//
// The interface returns validated bytes (not just error) following goxmldsig
// best practices to prevent signature wrapping attacks. The returned bytes
// should be used for further processing.
type SignatureVerifier interface {
	// Verify validates the XML signature on the document and returns the
	// validated XML bytes. Returns error if signature is invalid or missing.
	Verify(data []byte) ([]byte, error)
}
