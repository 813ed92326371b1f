package domain

import "strings"

// oidRegistry maps OIDs to their friendly names and vice versa.
// This is a pure domain component with no external dependencies.
var oidRegistry = map[string]string{
	// eduPerson attributes
	"urn:oid:1.3.6.1.4.1.5923.1.1.1.1":  "eduPersonAffiliation",
	"eduPersonAffiliation":              "urn:oid:1.3.6.1.4.1.5923.1.1.1.1",
	"urn:oid:1.3.6.1.4.1.5923.1.1.1.6":  "eduPersonPrincipalName",
	"eduPersonPrincipalName":            "urn:oid:1.3.6.1.4.1.5923.1.1.1.6",
	"urn:oid:1.3.6.1.4.1.5923.1.1.1.7":  "eduPersonEntitlement",
	"eduPersonEntitlement":              "urn:oid:1.3.6.1.4.1.5923.1.1.1.7",
	"urn:oid:1.3.6.1.4.1.5923.1.1.1.9":  "eduPersonScopedAffiliation",
	"eduPersonScopedAffiliation":        "urn:oid:1.3.6.1.4.1.5923.1.1.1.9",
	"urn:oid:1.3.6.1.4.1.5923.1.1.1.10": "eduPersonTargetedID",
	"eduPersonTargetedID":               "urn:oid:1.3.6.1.4.1.5923.1.1.1.10",

	// Standard LDAP attributes
	"urn:oid:0.9.2342.19200300.100.1.1": "uid",
	"uid":                               "urn:oid:0.9.2342.19200300.100.1.1",
	"urn:oid:0.9.2342.19200300.100.1.3": "mail",
	"mail":                              "urn:oid:0.9.2342.19200300.100.1.3",
	"urn:oid:2.5.4.3":                   "cn",
	"cn":                                "urn:oid:2.5.4.3",
	"urn:oid:2.5.4.42":                  "givenName",
	"givenName":                         "urn:oid:2.5.4.42",
	"urn:oid:2.5.4.4":                   "sn",
	"sn":                                "urn:oid:2.5.4.4",
	"urn:oid:2.16.840.1.113730.3.1.241": "displayName",
	"displayName":                       "urn:oid:2.16.840.1.113730.3.1.241",

	// SCHAC attributes
	"urn:oid:1.3.6.1.4.1.25178.1.2.9": "schacHomeOrganization",
	"schacHomeOrganization":           "urn:oid:1.3.6.1.4.1.25178.1.2.9",
}

// ResolveAttributeName resolves a SAML attribute name to both its OID and
// friendly name. Unknown names pass through unchanged for both.
//
// This is a pure function with no side effects or I/O.
func ResolveAttributeName(name string) (oid, friendlyName string) {
	if name == "" {
		return "", ""
	}

	if resolved, ok := oidRegistry[name]; ok {
		if strings.HasPrefix(name, "urn:oid:") {
			return name, resolved
		}
		return resolved, name
	}

	return name, name
}

// BuiltinAttributeMap returns one of the built-in attribute rename maps used
// by attribute mapping: "oid2name" (OID to friendly name) or "name2oid".
// Returns nil for unknown map names.
func BuiltinAttributeMap(name string) map[string]string {
	var keyIsOID bool
	switch name {
	case "oid2name":
		keyIsOID = true
	case "name2oid":
		keyIsOID = false
	default:
		return nil
	}

	out := make(map[string]string)
	for from, to := range oidRegistry {
		if strings.HasPrefix(from, "urn:oid:") == keyIsOID {
			out[from] = to
		}
	}
	return out
}
