//go:build unit

package secrets

import (
	"errors"
	"testing"
)

// TestStaticSaltProvider verifies configured salts are served and bad ones
// are rejected at construction.
func TestStaticSaltProvider(t *testing.T) {
	p, err := NewStaticSaltProvider("  s3cr3t-salt  ")
	if err != nil {
		t.Fatalf("NewStaticSaltProvider: %v", err)
	}
	salt, err := p.SecretSalt()
	if err != nil {
		t.Fatalf("SecretSalt: %v", err)
	}
	if salt != "s3cr3t-salt" {
		t.Errorf("salt = %q", salt)
	}

	if _, err := NewStaticSaltProvider(""); err == nil {
		t.Error("empty salt must be rejected")
	}
	if _, err := NewStaticSaltProvider("   "); err == nil {
		t.Error("whitespace salt must be rejected")
	}
	if _, err := NewStaticSaltProvider("defaultsecretsalt"); err == nil {
		t.Error("placeholder salt must be rejected")
	}
}

// countingProvider counts fetches.
type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) SecretSalt() (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return "inner-salt", nil
}

// TestCachedSaltProvider verifies the inner provider is consulted exactly
// once after a success, and errors are not cached.
func TestCachedSaltProvider(t *testing.T) {
	inner := &countingProvider{}
	cached := NewCachedSaltProvider(inner)

	for i := 0; i < 3; i++ {
		salt, err := cached.SecretSalt()
		if err != nil {
			t.Fatalf("SecretSalt: %v", err)
		}
		if salt != "inner-salt" {
			t.Errorf("salt = %q", salt)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner fetched %d times, want 1", inner.calls)
	}

	failing := &countingProvider{err: errors.New("vault down")}
	cached = NewCachedSaltProvider(failing)
	if _, err := cached.SecretSalt(); err == nil {
		t.Fatal("expected error from inner provider")
	}
	failing.err = nil
	if _, err := cached.SecretSalt(); err != nil {
		t.Fatalf("recovery fetch: %v", err)
	}
	if failing.calls != 2 {
		t.Errorf("inner fetched %d times, want 2", failing.calls)
	}
}
