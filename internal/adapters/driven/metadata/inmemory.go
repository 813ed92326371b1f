// Package metadata provides MetadataProvider implementations backed by
// in-memory sets and YAML files on disk.
package metadata

import (
	"sync"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// InMemoryProvider serves metadata from in-memory sets. It is the provider
// of choice for tests and for embedding deployments that construct their
// federation programmatically.
type InMemoryProvider struct {
	mu   sync.RWMutex
	sets map[string]map[string]*domain.EntityMetadata
}

// NewInMemoryProvider creates an empty provider.
func NewInMemoryProvider() *InMemoryProvider {
	return &InMemoryProvider{
		sets: make(map[string]map[string]*domain.EntityMetadata),
	}
}

// Add registers metadata under its set, replacing any previous entry for the
// same entity ID.
func (p *InMemoryProvider) Add(meta *domain.EntityMetadata) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set := p.sets[meta.Set()]
	if set == nil {
		set = make(map[string]*domain.EntityMetadata)
		p.sets[meta.Set()] = set
	}
	set[meta.EntityID()] = meta
}

// GetMetadata returns the metadata for one entity.
func (p *InMemoryProvider) GetMetadata(entityID, set string) (*domain.EntityMetadata, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if meta, ok := p.sets[set][entityID]; ok {
		return meta, nil
	}
	return nil, ports.ErrEntityNotFound
}

// GetList returns all metadata in a set, keyed by entity ID. An unknown set
// yields an empty map.
func (p *InMemoryProvider) GetList(set string) (map[string]*domain.EntityMetadata, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]*domain.EntityMetadata, len(p.sets[set]))
	for id, meta := range p.sets[set] {
		out[id] = meta
	}
	return out, nil
}

var _ ports.MetadataProvider = (*InMemoryProvider)(nil)
