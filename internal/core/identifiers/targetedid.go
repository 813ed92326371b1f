package identifiers

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"

	"github.com/beevik/etree"
	"gopkg.in/yaml.v3"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
	"github.com/philiph/saml-fed/internal/core/processing"
)

func init() {
	processing.RegisterFilter("saml:TargetedID", newTargetedID)
}

// TargetedIDAttribute is the legacy eduPersonTargetedID attribute name.
const TargetedIDAttribute = "eduPersonTargetedID"

type targetedIDConfig struct {
	IdentifyingAttribute string `yaml:"identifyingAttribute"`

	// NameID wraps the value in a persistent-format NameID element instead
	// of emitting a bare string.
	NameID bool `yaml:"nameId"`
}

// targetedID derives the legacy eduPersonTargetedID attribute. The hash uses
// a length-prefix encoding that existing deployments depend on; it must not
// be changed without a migration plan.
type targetedID struct {
	identifyingAttribute string
	nameID               bool
	salt                 ports.SaltProvider
}

func newTargetedID(node *yaml.Node, deps processing.Deps) (processing.Filter, error) {
	var cfg targetedIDConfig
	if err := node.Decode(&cfg); err != nil {
		return nil, domain.ConfigError("saml:TargetedID: invalid configuration: %v", err)
	}
	if cfg.IdentifyingAttribute == "" {
		return nil, domain.ConfigError("saml:TargetedID: identifyingAttribute is required")
	}
	if deps.Salt == nil {
		return nil, domain.ConfigError("saml:TargetedID: no secret salt provider configured")
	}
	return &targetedID{
		identifyingAttribute: cfg.IdentifyingAttribute,
		nameID:               cfg.NameID,
		salt:                 deps.Salt,
	}, nil
}

func (f *targetedID) Name() string { return "saml:TargetedID" }

func (f *targetedID) Process(req *processing.Request) (*processing.Suspension, error) {
	userID := req.Attributes.First(f.identifyingAttribute)
	if userID == "" {
		return nil, domain.AssertionError(f.identifyingAttribute,
			"saml:TargetedID: identifying attribute %q is missing or empty", f.identifyingAttribute)
	}

	salt, err := f.salt.SecretSalt()
	if err != nil {
		return nil, err
	}

	value := TargetedIDValue(salt, userID, req.Source, req.Destination)

	if f.nameID {
		srcID, dstID := "", ""
		if req.Source != nil {
			srcID = req.Source.EntityID()
		}
		if req.Destination != nil {
			dstID = req.Destination.EntityID()
		}
		nameID := domain.NameID{
			Format:          domain.NameIDFormatPersistent,
			Value:           value,
			NameQualifier:   srcID,
			SPNameQualifier: dstID,
		}
		xml, err := marshalNameID(nameID)
		if err != nil {
			return nil, err
		}
		req.Attributes[TargetedIDAttribute] = []string{xml}
		return nil, nil
	}

	req.Attributes[TargetedIDAttribute] = []string{value}
	return nil, nil
}

// TargetedIDValue computes the legacy targeted-id hash:
//
//	sha1("uidhashbase" + salt + len(src)+":"+src + len(dst)+":"+dst + len(uid)+":"+uid + salt)
//
// where src and dst are the length-prefixed encodings of each entity's
// metadata set and entity ID. The length prefixing prevents
// boundary-concatenation collisions between fields of variable length and is
// preserved exactly for interoperability with deployed identifiers.
func TargetedIDValue(salt, userID string, src, dst *domain.EntityMetadata) string {
	srcStr := entityString(src)
	dstStr := entityString(dst)

	data := "uidhashbase" + salt
	data += lengthPrefix(srcStr)
	data += lengthPrefix(dstStr)
	data += lengthPrefix(userID)
	data += salt

	sum := sha1.Sum([]byte(data))
	return hex.EncodeToString(sum[:])
}

// entityString encodes an entity as the concatenation of its length-prefixed
// metadata set and entity ID, each omitted when absent. A nil entity encodes
// as the empty string.
func entityString(md *domain.EntityMetadata) string {
	if md == nil {
		return ""
	}
	s := ""
	if set := md.Set(); set != "" {
		s += lengthPrefix(set)
	}
	if id := md.EntityID(); id != "" {
		s += lengthPrefix(id)
	}
	return s
}

func lengthPrefix(s string) string {
	return strconv.Itoa(len(s)) + ":" + s
}

// marshalNameID serializes a NameID as a saml:NameID element.
func marshalNameID(n domain.NameID) (string, error) {
	doc := etree.NewDocument()
	el := doc.CreateElement("saml:NameID")
	el.CreateAttr("xmlns:saml", "urn:oasis:names:tc:SAML:2.0:assertion")
	el.CreateAttr("Format", n.Format)
	if n.NameQualifier != "" {
		el.CreateAttr("NameQualifier", n.NameQualifier)
	}
	if n.SPNameQualifier != "" {
		el.CreateAttr("SPNameQualifier", n.SPNameQualifier)
	}
	el.SetText(n.Value)

	out, err := doc.WriteToString()
	if err != nil {
		return "", domain.AssertionError("", "failed to serialize NameID: %v", err)
	}
	return out, nil
}
