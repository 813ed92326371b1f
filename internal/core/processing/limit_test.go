//go:build unit

package processing

import (
	"reflect"
	"testing"

	"github.com/philiph/saml-fed/internal/core/domain"
)

// TestAttributeLimit_AllowList verifies attributes outside the allow-list are
// removed.
func TestAttributeLimit_AllowList(t *testing.T) {
	filter, err := newAttributeLimit(yamlNode(t, `
attributes:
  - mail
  - eduPersonAffiliation
`), Deps{})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	req := NewRequest(domain.AttributeSet{
		"mail":                 {"alice@example.org"},
		"eduPersonAffiliation": {"member"},
		"sn":                   {"Adams"},
	}, nil, nil)
	if _, err := filter.Process(req); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, ok := req.Attributes["sn"]; ok {
		t.Error("sn survived the allow-list")
	}
	if len(req.Attributes) != 2 {
		t.Errorf("attributes = %v", req.Attributes)
	}
}

// TestAttributeLimit_ValueConstraints verifies per-attribute value filtering
// with plain sets, case folding, and regexes, including whole-attribute
// removal when no value survives.
func TestAttributeLimit_ValueConstraints(t *testing.T) {
	filter, err := newAttributeLimit(yamlNode(t, `
attributes:
  - name: eduPersonAffiliation
    values:
      - member
      - staff
    ignoreCase: true
  - name: eduPersonEntitlement
    regex:
      - "^urn:mace:"
`), Deps{})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	req := NewRequest(domain.AttributeSet{
		"eduPersonAffiliation": {"MEMBER", "guest"},
		"eduPersonEntitlement": {"urn:mace:dir:entitlement:common-lib-terms", "local:admin"},
	}, nil, nil)
	if _, err := filter.Process(req); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !reflect.DeepEqual(req.Attributes["eduPersonAffiliation"], []string{"MEMBER"}) {
		t.Errorf("affiliation = %v", req.Attributes["eduPersonAffiliation"])
	}
	if !reflect.DeepEqual(req.Attributes["eduPersonEntitlement"], []string{"urn:mace:dir:entitlement:common-lib-terms"}) {
		t.Errorf("entitlement = %v", req.Attributes["eduPersonEntitlement"])
	}

	req2 := NewRequest(domain.AttributeSet{"eduPersonEntitlement": {"local:admin"}}, nil, nil)
	if _, err := filter.Process(req2); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, ok := req2.Attributes["eduPersonEntitlement"]; ok {
		t.Error("attribute with zero surviving values must be removed")
	}
}

// TestAttributeLimit_MetadataDefault verifies the default:true fallback reads
// the allow-list from the destination metadata's "attributes" option.
func TestAttributeLimit_MetadataDefault(t *testing.T) {
	filter, err := newAttributeLimit(yamlNode(t, "default: true\n"), Deps{})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	dst := domain.NewEntityMetadata("https://sp.example.org", domain.MetadataSetSPRemote, map[string]any{
		"attributes": []any{"mail"},
	})
	req := NewRequest(domain.AttributeSet{
		"mail": {"alice@example.org"},
		"cn":   {"Alice"},
	}, nil, dst)
	if _, err := filter.Process(req); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, ok := req.Attributes["cn"]; ok {
		t.Error("cn survived the metadata allow-list")
	}
	if _, ok := req.Attributes["mail"]; !ok {
		t.Error("mail should have been kept")
	}
}

// TestAttributeLimit_NoListAnywhereIsNoop verifies default mode without any
// metadata allow-list makes no changes.
func TestAttributeLimit_NoListAnywhereIsNoop(t *testing.T) {
	filter, err := newAttributeLimit(yamlNode(t, "default: true\n"), Deps{})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	req := NewRequest(domain.AttributeSet{"cn": {"Alice"}}, nil, nil)
	if _, err := filter.Process(req); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(req.Attributes) != 1 {
		t.Errorf("attributes = %v", req.Attributes)
	}
}

// TestAttributeLimit_RejectsBadConfig verifies mixed value/regex constraints
// and bad regexes are construction-time errors.
func TestAttributeLimit_RejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"values and regex together", "attributes:\n  - name: a\n    values: [x]\n    regex: [y]\n"},
		{"malformed regex", "attributes:\n  - name: a\n    regex: [\"[bad\"]\n"},
		{"unnamed entry", "attributes:\n  - values: [x]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := newAttributeLimit(yamlNode(t, tc.yaml), Deps{}); err == nil {
				t.Error("expected a configuration error")
			}
		})
	}
}
