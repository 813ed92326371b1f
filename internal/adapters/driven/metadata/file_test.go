//go:build unit

package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

const idpRemoteYAML = `
https://idp.example.org/saml2/idp/metadata.php:
  name: Example IdP
  disable_scoping: true
  SingleSignOnService:
    - Binding: urn:oasis:names:tc:SAML:2.0:bindings:HTTP-Redirect
      Location: https://idp.example.org/saml2/idp/SSOService.php
  SingleLogoutService:
    - Binding: urn:oasis:names:tc:SAML:2.0:bindings:HTTP-Redirect
      Location: https://idp.example.org/saml2/idp/SingleLogoutService.php
      ResponseLocation: https://idp.example.org/saml2/idp/SLOResponse.php
`

func writeSet(t *testing.T, dir, set, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, set+".yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// TestFileProvider_LoadsSet verifies YAML parsing of entities, endpoints and
// inline options.
func TestFileProvider_LoadsSet(t *testing.T) {
	dir := t.TempDir()
	writeSet(t, dir, domain.MetadataSetIdPRemote, idpRemoteYAML)

	provider, err := NewFileProvider(dir)
	if err != nil {
		t.Fatalf("NewFileProvider: %v", err)
	}

	meta, err := provider.GetMetadata("https://idp.example.org/saml2/idp/metadata.php", domain.MetadataSetIdPRemote)
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if meta.OptionalString("name", "") != "Example IdP" {
		t.Errorf("name = %q", meta.OptionalString("name", ""))
	}
	if !meta.OptionalBool("disable_scoping", false) {
		t.Error("disable_scoping option lost")
	}

	if len(meta.SingleSignOnServices) != 1 || meta.SingleSignOnServices[0].Binding != domain.BindingHTTPRedirect {
		t.Errorf("SSO endpoints = %v", meta.SingleSignOnServices)
	}
	slo := meta.SingleLogoutServices
	if len(slo) != 1 || slo[0].ResponseLocation != "https://idp.example.org/saml2/idp/SLOResponse.php" {
		t.Errorf("SLO endpoints = %v", slo)
	}
}

// TestFileProvider_MissingSetIsEmpty verifies an absent set file yields an
// empty set, and an unknown entity the not-found error.
func TestFileProvider_MissingSetIsEmpty(t *testing.T) {
	provider, err := NewFileProvider(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileProvider: %v", err)
	}

	list, err := provider.GetList(domain.MetadataSetSPRemote)
	if err != nil {
		t.Fatalf("GetList: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("list = %v", list)
	}

	_, err = provider.GetMetadata("https://sp.example.org", domain.MetadataSetSPRemote)
	if !errors.Is(err, ports.ErrEntityNotFound) {
		t.Errorf("want ErrEntityNotFound, got %v", err)
	}
}

// TestFileProvider_ReloadPicksUpChanges verifies the cache holds until
// Reload.
func TestFileProvider_ReloadPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	writeSet(t, dir, domain.MetadataSetIdPRemote, "https://idp.example.org:\n  name: Before\n")

	provider, err := NewFileProvider(dir)
	if err != nil {
		t.Fatalf("NewFileProvider: %v", err)
	}
	meta, err := provider.GetMetadata("https://idp.example.org", domain.MetadataSetIdPRemote)
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if meta.OptionalString("name", "") != "Before" {
		t.Errorf("name = %q", meta.OptionalString("name", ""))
	}

	writeSet(t, dir, domain.MetadataSetIdPRemote, "https://idp.example.org:\n  name: After\n")

	// Cached until told otherwise.
	meta, _ = provider.GetMetadata("https://idp.example.org", domain.MetadataSetIdPRemote)
	if meta.OptionalString("name", "") != "Before" {
		t.Error("cache should serve the old document until Reload")
	}

	provider.Reload()
	meta, err = provider.GetMetadata("https://idp.example.org", domain.MetadataSetIdPRemote)
	if err != nil {
		t.Fatalf("GetMetadata after Reload: %v", err)
	}
	if meta.OptionalString("name", "") != "After" {
		t.Errorf("name after Reload = %q", meta.OptionalString("name", ""))
	}
}

// TestFileProvider_BadInputs verifies constructor and parse failures.
func TestFileProvider_BadInputs(t *testing.T) {
	if _, err := NewFileProvider("/nonexistent/metadata"); err == nil {
		t.Error("missing directory must be rejected")
	}

	dir := t.TempDir()
	writeSet(t, dir, domain.MetadataSetIdPRemote, "not: [valid: yaml")
	provider, err := NewFileProvider(dir)
	if err != nil {
		t.Fatalf("NewFileProvider: %v", err)
	}
	if _, err := provider.GetList(domain.MetadataSetIdPRemote); err == nil {
		t.Error("malformed set file must fail")
	}
}
