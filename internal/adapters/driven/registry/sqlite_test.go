//go:build unit

package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/philiph/saml-fed/internal/core/domain"
)

func openTestRegistry(t *testing.T) *SQLiteRegistry {
	t.Helper()
	reg, err := NewSQLiteRegistry(filepath.Join(t.TempDir(), "assoc.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRegistry: %v", err)
	}
	t.Cleanup(func() { reg.Close() })
	return reg
}

// TestSQLiteRegistry_RoundTrip verifies associations survive a full
// add/list/terminate cycle with their fields intact.
func TestSQLiteRegistry_RoundTrip(t *testing.T) {
	reg := openTestRegistry(t)

	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	assoc := domain.Association{
		ID:            "a1",
		SPEntityID:    "https://sp.example.org",
		NameID:        "abc123",
		NameIDFormat:  domain.NameIDFormatPersistent,
		SessionIndex:  "_session-1",
		Expires:       expires,
		LogoutTimeout: 8 * time.Second,
	}
	if err := reg.Add(assoc); err != nil {
		t.Fatalf("Add: %v", err)
	}

	assocs, err := reg.Associations()
	if err != nil {
		t.Fatalf("Associations: %v", err)
	}
	got, ok := assocs["a1"]
	if !ok {
		t.Fatalf("association missing: %v", assocs)
	}
	if got.SPEntityID != assoc.SPEntityID || got.NameID != assoc.NameID ||
		got.NameIDFormat != assoc.NameIDFormat || got.SessionIndex != assoc.SessionIndex {
		t.Errorf("got %+v", got)
	}
	if !got.Expires.Equal(expires) {
		t.Errorf("expires = %v, want %v", got.Expires, expires)
	}
	if got.LogoutTimeout != 8*time.Second {
		t.Errorf("logout timeout = %v", got.LogoutTimeout)
	}

	if err := reg.Terminate("a1"); err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	if err := reg.Terminate("a1"); err != nil {
		t.Errorf("second Terminate: %v", err)
	}
	assocs, err = reg.Associations()
	if err != nil {
		t.Fatalf("Associations: %v", err)
	}
	if len(assocs) != 0 {
		t.Errorf("assocs after terminate = %v", assocs)
	}
}

// TestSQLiteRegistry_AddReplaces verifies INSERT OR REPLACE semantics.
func TestSQLiteRegistry_AddReplaces(t *testing.T) {
	reg := openTestRegistry(t)

	if err := reg.Add(domain.Association{ID: "a", SessionIndex: "_s1"}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Add(domain.Association{ID: "a", SessionIndex: "_s2"}); err != nil {
		t.Fatal(err)
	}

	assocs, err := reg.Associations()
	if err != nil {
		t.Fatal(err)
	}
	if len(assocs) != 1 || assocs["a"].SessionIndex != "_s2" {
		t.Errorf("assocs = %v", assocs)
	}
}

// TestSQLiteRegistry_ReapsExpired verifies expired rows are dropped on read
// while zero-expiry rows persist.
func TestSQLiteRegistry_ReapsExpired(t *testing.T) {
	reg := openTestRegistry(t)

	if err := reg.Add(domain.Association{ID: "expired", Expires: time.Now().Add(-time.Hour)}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Add(domain.Association{ID: "forever"}); err != nil {
		t.Fatal(err)
	}

	assocs, err := reg.Associations()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := assocs["expired"]; ok {
		t.Error("expired association still listed")
	}
	if _, ok := assocs["forever"]; !ok {
		t.Error("non-expiring association missing")
	}
}
