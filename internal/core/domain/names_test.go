//go:build unit

package domain

import "testing"

// TestBuiltinAttributeMap_Directions verifies oid2name maps OIDs to friendly
// names and name2oid the reverse.
func TestBuiltinAttributeMap_Directions(t *testing.T) {
	oid2name := BuiltinAttributeMap("oid2name")
	if oid2name == nil {
		t.Fatal("oid2name map missing")
	}
	if got := oid2name["urn:oid:0.9.2342.19200300.100.1.3"]; got != "mail" {
		t.Errorf("mail OID maps to %q", got)
	}

	name2oid := BuiltinAttributeMap("name2oid")
	if got := name2oid["mail"]; got != "urn:oid:0.9.2342.19200300.100.1.3" {
		t.Errorf("mail maps to %q", got)
	}

	if BuiltinAttributeMap("unknown") != nil {
		t.Error("unknown map name should yield nil")
	}
}
