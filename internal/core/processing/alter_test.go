//go:build unit

package processing

import (
	"reflect"
	"testing"

	"github.com/philiph/saml-fed/internal/core/domain"
)

// TestAttributeAlter_Rewrite verifies the default mode rewrites every value
// in place with the regex replacement.
func TestAttributeAlter_Rewrite(t *testing.T) {
	filter, err := newAttributeAlter(yamlNode(t, `
subject: mail
pattern: "@old\\.example\\.org$"
replacement: "@example.org"
`), Deps{})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	req := NewRequest(domain.AttributeSet{
		"mail": {"alice@old.example.org", "bob@example.com"},
	}, nil, nil)
	if _, err := filter.Process(req); err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := []string{"alice@example.org", "bob@example.com"}
	if !reflect.DeepEqual(req.Attributes["mail"], want) {
		t.Errorf("mail = %v, want %v", req.Attributes["mail"], want)
	}
}

// TestAttributeAlter_ReplaceCollapsesList verifies replace mode substitutes
// the entire value list when any value matches.
func TestAttributeAlter_ReplaceCollapsesList(t *testing.T) {
	filter, err := newAttributeAlter(yamlNode(t, `
subject: affiliation
pattern: "^(student|staff)$"
replacement: member
replace: true
`), Deps{})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	req := NewRequest(domain.AttributeSet{"affiliation": {"guest", "student"}}, nil, nil)
	if _, err := filter.Process(req); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !reflect.DeepEqual(req.Attributes["affiliation"], []string{"member"}) {
		t.Errorf("affiliation = %v", req.Attributes["affiliation"])
	}
}

// TestAttributeAlter_RemoveDropsMatches verifies remove mode deletes matching
// values and removes the attribute when none survive.
func TestAttributeAlter_RemoveDropsMatches(t *testing.T) {
	filter, err := newAttributeAlter(yamlNode(t, `
subject: entitlement
pattern: "^internal:"
remove: true
`), Deps{})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	req := NewRequest(domain.AttributeSet{
		"entitlement": {"internal:admin", "urn:mace:dir:entitlement:common-lib-terms"},
	}, nil, nil)
	if _, err := filter.Process(req); err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := []string{"urn:mace:dir:entitlement:common-lib-terms"}
	if !reflect.DeepEqual(req.Attributes["entitlement"], want) {
		t.Errorf("entitlement = %v, want %v", req.Attributes["entitlement"], want)
	}

	req2 := NewRequest(domain.AttributeSet{"entitlement": {"internal:admin"}}, nil, nil)
	if _, err := filter.Process(req2); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, ok := req2.Attributes["entitlement"]; ok {
		t.Error("attribute with all values removed must disappear")
	}
}

// TestAttributeAlter_MissingSubjectIsNoop verifies an absent subject attribute
// passes through untouched.
func TestAttributeAlter_MissingSubjectIsNoop(t *testing.T) {
	filter, err := newAttributeAlter(yamlNode(t, "subject: mail\npattern: x\n"), Deps{})
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

// TestAttributeAlter_RejectsBadConfig verifies malformed patterns and
// conflicting modes are construction-time errors.
func TestAttributeAlter_RejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing subject", "pattern: x\n"},
		{"missing pattern", "subject: mail\n"},
		{"malformed regex", "subject: mail\npattern: \"[unterminated\"\n"},
		{"replace and remove", "subject: mail\npattern: x\nreplace: true\nremove: true\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := newAttributeAlter(yamlNode(t, tc.yaml), Deps{}); err == nil {
				t.Error("expected a configuration error")
			}
		})
	}
}
