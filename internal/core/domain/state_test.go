//go:build unit

package domain

import "testing"

// TestNewStateID_Shape verifies state IDs are 32 hex characters (128 bits)
// and unique.
func TestNewStateID_Shape(t *testing.T) {
	seen := map[StateID]bool{}
	for i := 0; i < 100; i++ {
		id := NewStateID()
		if len(id) != 32 {
			t.Fatalf("state ID %q has length %d, want 32", id, len(id))
		}
		for _, r := range id {
			if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
				t.Fatalf("state ID %q is not lowercase hex", id)
			}
		}
		if seen[id] {
			t.Fatalf("duplicate state ID %q", id)
		}
		seen[id] = true
	}
}

// TestAuthState_TypedAccessors verifies the accessors coerce the shapes JSON
// deserialization produces.
func TestAuthState_TypedAccessors(t *testing.T) {
	state := AuthState{
		"s":    "hello",
		"b":    true,
		"i":    7,
		"f":    float64(9), // JSON round-trip turns ints into float64
		"list": []any{"a", "b"},
		"m":    map[string]any{"k": "v"},
	}

	if got := state.String("s", ""); got != "hello" {
		t.Errorf("String = %q", got)
	}
	if !state.Bool("b", false) {
		t.Error("Bool should be true")
	}
	if got := state.Int("i", 0); got != 7 {
		t.Errorf("Int = %d", got)
	}
	if got := state.Int("f", 0); got != 9 {
		t.Errorf("Int should accept float64, got %d", got)
	}
	if got := state.Strings("list"); len(got) != 2 || got[0] != "a" {
		t.Errorf("Strings = %v", got)
	}
	if got := state.Map("m"); got == nil || got["k"] != "v" {
		t.Errorf("Map = %v", got)
	}
	if got := state.String("missing", "def"); got != "def" {
		t.Errorf("default = %q", got)
	}
}

// TestAuthState_CopyIsShallowIndependent verifies top-level mutation of a
// copy does not affect the original.
func TestAuthState_CopyIsShallowIndependent(t *testing.T) {
	orig := AuthState{"k": "v"}
	cp := orig.Copy()
	cp["k"] = "changed"
	if orig.String("k", "") != "v" {
		t.Error("copy shares map with original")
	}
}
