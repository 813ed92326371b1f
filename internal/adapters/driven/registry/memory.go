// Package registry provides AssociationRegistry implementations: in-memory
// for single-instance deployments and tests, SQLite for durable
// single-instance deployments.
package registry

import (
	"sync"
	"time"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// MemoryRegistry keeps live associations in a mutex-guarded map. Expired
// associations are dropped lazily on read.
type MemoryRegistry struct {
	mu     sync.Mutex
	assocs map[string]domain.Association

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		assocs: make(map[string]domain.Association),
		now:    time.Now,
	}
}

// Associations returns all live, unexpired associations.
func (r *MemoryRegistry) Associations() (map[string]domain.Association, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	out := make(map[string]domain.Association, len(r.assocs))
	for id, assoc := range r.assocs {
		if !assoc.Expires.IsZero() && now.After(assoc.Expires) {
			delete(r.assocs, id)
			continue
		}
		out[id] = assoc
	}
	return out, nil
}

// Add registers an association, replacing any existing one with the same ID.
func (r *MemoryRegistry) Add(assoc domain.Association) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assocs[assoc.ID] = assoc
	return nil
}

// Terminate removes an association. Unknown IDs are ignored.
func (r *MemoryRegistry) Terminate(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assocs, id)
	return nil
}

var _ ports.AssociationRegistry = (*MemoryRegistry)(nil)
