//go:build unit

package identifiers

import (
	"strings"
	"testing"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/processing"
)

// TestPairwiseIDValue verifies determinism, per-SP distinctness, and scope
// suffixing.
func TestPairwiseIDValue(t *testing.T) {
	a1, err := PairwiseIDValue("salt", "alice", "https://sp1.example.org", "example.org")
	if err != nil {
		t.Fatalf("PairwiseIDValue: %v", err)
	}
	a2, err := PairwiseIDValue("salt", "alice", "https://sp1.example.org", "example.org")
	if err != nil {
		t.Fatalf("PairwiseIDValue: %v", err)
	}
	if a1 != a2 {
		t.Error("same inputs must give the same identifier")
	}
	if !strings.HasSuffix(a1, "@example.org") {
		t.Errorf("identifier %q lacks scope suffix", a1)
	}
	hash := strings.TrimSuffix(a1, "@example.org")
	if len(hash) != 64 {
		t.Errorf("hash part has length %d, want 64", len(hash))
	}

	b, err := PairwiseIDValue("salt", "alice", "https://sp2.example.org", "example.org")
	if err != nil {
		t.Fatalf("PairwiseIDValue: %v", err)
	}
	if a1 == b {
		t.Error("identifiers for different SPs must differ")
	}

	c, err := PairwiseIDValue("othersalt", "alice", "https://sp1.example.org", "example.org")
	if err != nil {
		t.Fatalf("PairwiseIDValue: %v", err)
	}
	if a1 == c {
		t.Error("identifiers under different salts must differ")
	}
}

// TestPairwiseIDValue_RejectsBadInput verifies missing inputs fail instead of
// degrading the identifier.
func TestPairwiseIDValue_RejectsBadInput(t *testing.T) {
	if _, err := PairwiseIDValue("salt", "", "https://sp.example.org", "example.org"); err == nil {
		t.Error("empty user ID must be rejected")
	}
	if _, err := PairwiseIDValue("salt", "alice", "", "example.org"); err == nil {
		t.Error("empty relying party must be rejected")
	}
	if _, err := PairwiseIDValue("salt", "alice", "https://sp.example.org", ""); err == nil {
		t.Error("empty scope must be rejected")
	}
}

// TestPairwiseIDFilter_RequesterPrecedence verifies the innermost proxied
// requester takes precedence over the direct destination SP.
func TestPairwiseIDFilter_RequesterPrecedence(t *testing.T) {
	filter, err := newPairwiseID(configNode(t, `
identifyingAttribute: uid
scopeAttribute: schacHomeOrganization
`), processing.Deps{Salt: staticSalt("salt")})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	dst := domain.NewEntityMetadata("https://direct-sp.example.org", domain.MetadataSetSPRemote, nil)
	attrs := domain.AttributeSet{
		"uid":                   {"alice"},
		"schacHomeOrganization": {"example.org"},
	}

	direct := processing.NewRequest(attrs.Copy(), nil, dst)
	if _, err := filter.Process(direct); err != nil {
		t.Fatalf("Process: %v", err)
	}

	proxied := processing.NewRequest(attrs.Copy(), nil, dst)
	proxied.State[StateKeyRequesterID] = []any{"https://inner-sp.example.org"}
	if _, err := filter.Process(proxied); err != nil {
		t.Fatalf("Process: %v", err)
	}

	directID := direct.Attributes.First(PairwiseIDAttribute)
	proxiedID := proxied.Attributes.First(PairwiseIDAttribute)
	if directID == proxiedID {
		t.Error("proxied requester must yield a different pairwise identifier")
	}

	want, err := PairwiseIDValue("salt", "alice", "https://inner-sp.example.org", "example.org")
	if err != nil {
		t.Fatal(err)
	}
	if proxiedID != want {
		t.Errorf("proxied identifier = %q, want %q", proxiedID, want)
	}
}

// TestPairwiseIDFilter_RequiresSalt verifies a missing salt provider is a
// construction-time error.
func TestPairwiseIDFilter_RequiresSalt(t *testing.T) {
	_, err := newPairwiseID(configNode(t, `
identifyingAttribute: uid
scopeAttribute: schacHomeOrganization
`), processing.Deps{})
	if err == nil {
		t.Error("expected a configuration error")
	}
}
