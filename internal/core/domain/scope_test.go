//go:build unit

package domain

import "testing"

// TestValidScope verifies the scope pattern accepts DNS-like names and
// rejects everything else.
func TestValidScope(t *testing.T) {
	valid := []string{"example.org", "EXAMPLE.ORG", "a", "x-1.example.org", "0.example"}
	for _, s := range valid {
		if !ValidScope(s) {
			t.Errorf("ValidScope(%q) should be true", s)
		}
	}
	invalid := []string{"", "-example.org", ".example.org", "exa mple.org", "ex@mple.org"}
	for _, s := range invalid {
		if ValidScope(s) {
			t.Errorf("ValidScope(%q) should be false", s)
		}
	}
}

// TestExtractScope verifies the scope is everything after the first "@", or
// the whole value without one.
func TestExtractScope(t *testing.T) {
	cases := []struct {
		value, want string
	}{
		{"alice@example.org", "example.org"},
		{"a@b@c", "b@c"},
		{"example.org", "example.org"},
		{"", ""},
	}
	for _, c := range cases {
		if got := ExtractScope(c.value); got != c.want {
			t.Errorf("ExtractScope(%q) = %q, want %q", c.value, got, c.want)
		}
	}
}

// TestMatchesSubjectIDProfile verifies the strict uniqueness heuristic.
func TestMatchesSubjectIDProfile(t *testing.T) {
	if !MatchesSubjectIDProfile("alice@example.org") {
		t.Error("alice@example.org should match")
	}
	if MatchesSubjectIDProfile("alice.smith@example.org") {
		t.Error("dots are not allowed in the identifier part")
	}
	if MatchesSubjectIDProfile("alice") {
		t.Error("a value without a scope should not match")
	}
}
