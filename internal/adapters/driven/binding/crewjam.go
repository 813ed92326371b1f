// Package binding constructs outbound SAML protocol messages on top of
// crewjam/saml and encodes them for the HTTP-Redirect and HTTP-POST
// bindings.
package binding

import (
	"bytes"
	"compress/flate"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/beevik/etree"
	"github.com/crewjam/saml"
	"go.uber.org/zap"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// CrewjamBuilder builds AuthnRequests and LogoutRequests with crewjam/saml
// and finishes the parts the library does not model (Scoping, Extensions,
// IsPassive, SessionIndex, NameID encryption) directly on the XML tree.
type CrewjamBuilder struct {
	logger *zap.Logger
}

// NewCrewjamBuilder creates a message builder.
func NewCrewjamBuilder(logger *zap.Logger) *CrewjamBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CrewjamBuilder{logger: logger}
}

// BuildAuthnRequest constructs an AuthnRequest addressed to the IdP's SSO
// endpoint and encodes it for that endpoint's binding.
func (b *CrewjamBuilder) BuildAuthnRequest(sp, idp *domain.EntityMetadata, opts ports.AuthnRequestOptions) (*ports.OutboundMessage, error) {
	endpoint := domain.EndpointByBindings(idp.SingleSignOnServices,
		domain.BindingHTTPRedirect, domain.BindingHTTPPost)
	if endpoint == nil {
		return nil, domain.ConfigError("identity provider %q has no usable single sign-on endpoint", idp.EntityID())
	}
	destination := endpoint.Location
	if opts.Destination != "" {
		destination = opts.Destination
	}

	csp, err := b.serviceProvider(sp, idp, opts.ACSURL)
	if err != nil {
		return nil, err
	}

	req, err := csp.MakeAuthenticationRequest(destination, endpoint.Binding, saml.HTTPPostBinding)
	if err != nil {
		return nil, fmt.Errorf("build authn request: %w", err)
	}
	if opts.ForceAuthn {
		force := true
		req.ForceAuthn = &force
	}
	if opts.NameIDPolicy != nil {
		format := opts.NameIDPolicy.Format
		allowCreate := opts.NameIDPolicy.AllowCreate
		req.NameIDPolicy = &saml.NameIDPolicy{
			Format:      &format,
			AllowCreate: &allowCreate,
		}
	} else {
		req.NameIDPolicy = nil
	}

	el := req.Element()
	if opts.IsPassive {
		el.CreateAttr("IsPassive", "true")
	}
	if err := injectExtensions(el, opts.Extensions); err != nil {
		return nil, err
	}
	injectRequestedAuthnContext(el, opts.RequestedAuthnContext)
	injectScoping(el, opts.Scoping)

	b.logger.Debug("built authn request",
		zap.String("idp", idp.EntityID()),
		zap.String("binding", endpoint.Binding),
		zap.String("request_id", req.ID))

	return encodeMessage(el, req.ID, endpoint.Binding, destination, opts.RelayState)
}

// BuildLogoutRequest constructs a LogoutRequest addressed to opts.Endpoint.
func (b *CrewjamBuilder) BuildLogoutRequest(sp, idp *domain.EntityMetadata, opts ports.LogoutRequestOptions) (*ports.OutboundMessage, error) {
	csp, err := b.serviceProvider(sp, idp, "")
	if err != nil {
		return nil, err
	}

	req, err := csp.MakeLogoutRequest(opts.Endpoint.Location, opts.NameID.Value)
	if err != nil {
		return nil, fmt.Errorf("build logout request: %w", err)
	}
	req.NameID.Format = opts.NameID.Format
	req.NameID.NameQualifier = opts.NameID.NameQualifier
	req.NameID.SPNameQualifier = opts.NameID.SPNameQualifier

	el := req.Element()
	if opts.SessionIndex != "" {
		si := el.CreateElement("samlp:SessionIndex")
		si.SetText(opts.SessionIndex)
	}
	if opts.EncryptNameID {
		if err := encryptNameID(el, idp); err != nil {
			return nil, err
		}
	}

	b.logger.Debug("built logout request",
		zap.String("idp", idp.EntityID()),
		zap.String("binding", opts.Endpoint.Binding),
		zap.String("request_id", req.ID))

	return encodeMessage(el, req.ID, opts.Endpoint.Binding, opts.Endpoint.Location, opts.RelayState)
}

// serviceProvider assembles the crewjam ServiceProvider view of our hosted SP
// and the remote IdP.
func (b *CrewjamBuilder) serviceProvider(sp, idp *domain.EntityMetadata, acsURL string) (*saml.ServiceProvider, error) {
	csp := &saml.ServiceProvider{
		EntityID:    sp.EntityID(),
		IDPMetadata: entityDescriptor(idp),
	}
	if acsURL != "" {
		parsed, err := url.Parse(acsURL)
		if err != nil {
			return nil, domain.ConfigError("invalid assertion consumer service URL %q: %v", acsURL, err)
		}
		csp.AcsURL = *parsed
	}
	if format := sp.OptionalString("NameIDPolicy", ""); format != "" {
		csp.AuthnNameIDFormat = saml.NameIDFormat(format)
	}
	return csp, nil
}

// entityDescriptor converts remote IdP metadata into the crewjam descriptor
// shape.
func entityDescriptor(idp *domain.EntityMetadata) *saml.EntityDescriptor {
	ed := &saml.EntityDescriptor{
		EntityID: idp.EntityID(),
		IDPSSODescriptors: []saml.IDPSSODescriptor{{
			SingleSignOnServices: crewjamEndpoints(idp.SingleSignOnServices),
		}},
	}
	for _, certData := range idp.OptionalStrings("keys") {
		ed.IDPSSODescriptors[0].KeyDescriptors = append(
			ed.IDPSSODescriptors[0].KeyDescriptors,
			saml.KeyDescriptor{
				Use: "signing",
				KeyInfo: saml.KeyInfo{
					X509Data: saml.X509Data{
						X509Certificates: []saml.X509Certificate{{Data: certData}},
					},
				},
			},
		)
	}
	return ed
}

func crewjamEndpoints(eps []domain.Endpoint) []saml.Endpoint {
	out := make([]saml.Endpoint, len(eps))
	for i, ep := range eps {
		out[i] = saml.Endpoint{
			Binding:          ep.Binding,
			Location:         ep.Location,
			ResponseLocation: ep.ResponseLocation,
		}
	}
	return out
}

// injectExtensions places raw XML fragments inside a samlp:Extensions element
// directly after the Issuer, as schema ordering requires.
func injectExtensions(el *etree.Element, fragments []string) error {
	if len(fragments) == 0 {
		return nil
	}
	ext := etree.NewElement("samlp:Extensions")
	for _, fragment := range fragments {
		doc := etree.NewDocument()
		if err := doc.ReadFromString(fragment); err != nil {
			return domain.ConfigError("malformed extension fragment: %v", err)
		}
		root := doc.Root()
		if root == nil {
			return domain.ConfigError("extension fragment is not a single XML element")
		}
		ext.AddChild(root.Copy())
	}
	insertAfterIssuer(el, ext)
	return nil
}

// injectRequestedAuthnContext appends a samlp:RequestedAuthnContext element.
// crewjam's struct carries only one class reference, so the element is built
// here to support several.
func injectRequestedAuthnContext(el *etree.Element, rac *domain.RequestedAuthnContext) {
	if rac == nil || len(rac.ClassRefs) == 0 {
		return
	}
	ctx := el.CreateElement("samlp:RequestedAuthnContext")
	if rac.Comparison != "" {
		ctx.CreateAttr("Comparison", rac.Comparison)
	}
	for _, ref := range rac.ClassRefs {
		classRef := ctx.CreateElement("saml:AuthnContextClassRef")
		classRef.SetText(ref)
	}
}

// injectScoping appends a samlp:Scoping element. An empty scoping is omitted
// entirely; the absence of the element is a privacy control.
func injectScoping(el *etree.Element, scoping *domain.Scoping) {
	if scoping.Empty() {
		return
	}
	sc := el.CreateElement("samlp:Scoping")
	if scoping.ProxyCount != nil {
		sc.CreateAttr("ProxyCount", strconv.Itoa(*scoping.ProxyCount))
	}
	if len(scoping.IDPList) > 0 {
		list := sc.CreateElement("samlp:IDPList")
		for _, entityID := range scoping.IDPList {
			entry := list.CreateElement("samlp:IDPEntry")
			entry.CreateAttr("ProviderID", entityID)
		}
	}
	for _, requesterID := range scoping.RequesterIDs {
		rid := sc.CreateElement("samlp:RequesterID")
		rid.SetText(requesterID)
	}
}

// insertAfterIssuer places child directly after the saml:Issuer element, or
// first when no Issuer is present.
func insertAfterIssuer(el *etree.Element, child *etree.Element) {
	index := 0
	for i, token := range el.Child {
		if e, ok := token.(*etree.Element); ok && e.Tag == "Issuer" {
			index = i + 1
			break
		}
	}
	el.InsertChildAt(index, child)
}

// encodeMessage serializes the message element for the chosen binding.
// HTTP-Redirect uses the DEFLATE encoding; HTTP-POST uses plain base64 form
// fields.
func encodeMessage(el *etree.Element, messageID, binding, destination, relayState string) (*ports.OutboundMessage, error) {
	doc := etree.NewDocument()
	doc.SetRoot(el)

	msg := &ports.OutboundMessage{
		MessageID: messageID,
		Binding:   binding,
	}

	switch binding {
	case domain.BindingHTTPRedirect:
		var deflated bytes.Buffer
		b64 := base64.NewEncoder(base64.StdEncoding, &deflated)
		compressor, err := flate.NewWriter(b64, flate.BestCompression)
		if err != nil {
			return nil, fmt.Errorf("encode redirect request: %w", err)
		}
		if _, err := doc.WriteTo(compressor); err != nil {
			return nil, fmt.Errorf("encode redirect request: %w", err)
		}
		compressor.Close()
		b64.Close()

		target, err := url.Parse(destination)
		if err != nil {
			return nil, domain.ConfigError("invalid destination URL %q: %v", destination, err)
		}
		query := target.Query()
		query.Set("SAMLRequest", deflated.String())
		if relayState != "" {
			query.Set("RelayState", relayState)
		}
		target.RawQuery = query.Encode()
		msg.URL = target.String()

	case domain.BindingHTTPPost:
		raw, err := doc.WriteToBytes()
		if err != nil {
			return nil, fmt.Errorf("encode post request: %w", err)
		}
		msg.PostURL = destination
		msg.PostFields = map[string]string{
			"SAMLRequest": base64.StdEncoding.EncodeToString(raw),
		}
		if relayState != "" {
			msg.PostFields["RelayState"] = relayState
		}

	default:
		return nil, domain.ConfigError("unsupported outbound binding %q", binding)
	}

	return msg, nil
}

// certWhitespace strips the whitespace PEM-ish metadata blobs tend to carry.
var certWhitespace = regexp.MustCompile(`\s+`)

// encryptNameID replaces the saml:NameID child of a LogoutRequest element
// with a saml:EncryptedID encrypted to the recipient's public key, using
// AES-128-CBC for the payload and RSA-OAEP for the key transport.
func encryptNameID(el *etree.Element, idp *domain.EntityMetadata) error {
	cert, err := recipientCert(idp)
	if err != nil {
		return err
	}

	nameID := el.FindElement("./NameID")
	if nameID == nil {
		return domain.ConfigError("logout request has no NameID to encrypt")
	}

	plainDoc := etree.NewDocument()
	detached := nameID.Copy()
	detached.CreateAttr("xmlns:saml", "urn:oasis:names:tc:SAML:2.0:assertion")
	plainDoc.SetRoot(detached)
	plaintext, err := plainDoc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serialize NameID: %w", err)
	}

	key := make([]byte, 16)
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("generate content key: %w", err)
	}
	if _, err := rand.Read(iv); err != nil {
		return fmt.Errorf("generate IV: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("content cipher: %w", err)
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return domain.ConfigError("encryption certificate of %q does not carry an RSA key", idp.EntityID())
	}
	encryptedKey, err := rsa.EncryptOAEP(sha1.New(), rand.Reader, pub, key, nil)
	if err != nil {
		return fmt.Errorf("encrypt content key: %w", err)
	}

	encryptedID := etree.NewElement("saml:EncryptedID")
	data := encryptedID.CreateElement("xenc:EncryptedData")
	data.CreateAttr("xmlns:xenc", "http://www.w3.org/2001/04/xmlenc#")
	data.CreateAttr("Type", "http://www.w3.org/2001/04/xmlenc#Element")
	data.CreateElement("xenc:EncryptionMethod").
		CreateAttr("Algorithm", "http://www.w3.org/2001/04/xmlenc#aes128-cbc")

	keyInfo := data.CreateElement("ds:KeyInfo")
	keyInfo.CreateAttr("xmlns:ds", "http://www.w3.org/2000/09/xmldsig#")
	ek := keyInfo.CreateElement("xenc:EncryptedKey")
	ek.CreateElement("xenc:EncryptionMethod").
		CreateAttr("Algorithm", "http://www.w3.org/2001/04/xmlenc#rsa-oaep-mgf1p")
	ek.CreateElement("xenc:CipherData").
		CreateElement("xenc:CipherValue").
		SetText(base64.StdEncoding.EncodeToString(encryptedKey))

	data.CreateElement("xenc:CipherData").
		CreateElement("xenc:CipherValue").
		SetText(base64.StdEncoding.EncodeToString(append(iv, ciphertext...)))

	// Swap the plaintext NameID for the encrypted form at the same position.
	for i, token := range el.Child {
		if e, ok := token.(*etree.Element); ok && e == nameID {
			el.RemoveChildAt(i)
			el.InsertChildAt(i, encryptedID)
			break
		}
	}
	return nil
}

// recipientCert parses the recipient's encryption certificate from metadata.
// The first key marked for encryption wins; a key without a use qualifier is
// accepted as a fallback.
func recipientCert(idp *domain.EntityMetadata) (*x509.Certificate, error) {
	certData := idp.OptionalString("encryption.certData", "")
	if certData == "" {
		certs := idp.OptionalStrings("keys")
		if len(certs) > 0 {
			certData = certs[0]
		}
	}
	if certData == "" {
		return nil, domain.ConfigError("identity provider %q has no encryption certificate", idp.EntityID())
	}

	der, err := base64.StdEncoding.DecodeString(certWhitespace.ReplaceAllString(certData, ""))
	if err != nil {
		return nil, domain.ConfigError("encryption certificate of %q is not valid base64: %v", idp.EntityID(), err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, domain.ConfigError("encryption certificate of %q cannot be parsed: %v", idp.EntityID(), err)
	}
	return cert, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}

// Ensure CrewjamBuilder implements ports.MessageBuilder
var _ ports.MessageBuilder = (*CrewjamBuilder)(nil)
