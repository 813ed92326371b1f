// Package secrets provides the secret salt used for stable identifier
// derivation.
package secrets

import (
	"strings"
	"sync"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// placeholderSalt is the value shipped in configuration templates. Deriving
// identifiers from it would make them guessable, so it is rejected.
const placeholderSalt = "defaultsecretsalt"

// StaticSaltProvider serves a fixed salt from configuration. The salt must
// never change once identifiers have been issued; rotating it silently
// changes every pairwise identifier emitted by the installation.
type StaticSaltProvider struct {
	salt string
}

// NewStaticSaltProvider validates and wraps the configured salt.
func NewStaticSaltProvider(salt string) (*StaticSaltProvider, error) {
	trimmed := strings.TrimSpace(salt)
	if trimmed == "" {
		return nil, domain.ConfigError("secret salt is not configured")
	}
	if trimmed == placeholderSalt {
		return nil, domain.ConfigError("secret salt still has its default value; generate a random one")
	}
	return &StaticSaltProvider{salt: trimmed}, nil
}

// SecretSalt returns the configured salt.
func (p *StaticSaltProvider) SecretSalt() (string, error) {
	return p.salt, nil
}

// CachedSaltProvider memoizes another provider's salt after the first
// successful fetch. Useful when the underlying provider does I/O.
type CachedSaltProvider struct {
	inner ports.SaltProvider

	mu   sync.Mutex
	salt string
}

// NewCachedSaltProvider wraps inner with memoization.
func NewCachedSaltProvider(inner ports.SaltProvider) *CachedSaltProvider {
	return &CachedSaltProvider{inner: inner}
}

// SecretSalt returns the cached salt, fetching it once on first use.
func (p *CachedSaltProvider) SecretSalt() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.salt != "" {
		return p.salt, nil
	}
	salt, err := p.inner.SecretSalt()
	if err != nil {
		return "", err
	}
	p.salt = salt
	return salt, nil
}

var (
	_ ports.SaltProvider = (*StaticSaltProvider)(nil)
	_ ports.SaltProvider = (*CachedSaltProvider)(nil)
)
