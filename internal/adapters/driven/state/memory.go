// Package state provides StateStore implementations: an in-memory store for
// single-instance deployments and tests, a stateless JWT-backed store, and a
// PostgreSQL store for clustered deployments.
package state

import (
	"sync"
	"time"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// DefaultTTL is how long a saved state survives before expiry.
const DefaultTTL = time.Hour

type memoryEntry struct {
	state  domain.AuthState
	stage  string
	expiry time.Time
}

// MemoryStateStore keeps flow states in a mutex-guarded map. Expired entries
// are reaped lazily on access.
type MemoryStateStore struct {
	mu      sync.Mutex
	entries map[domain.StateID]memoryEntry
	ttl     time.Duration

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewMemoryStateStore creates an in-memory store. A non-positive ttl falls
// back to DefaultTTL.
func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStateStore{
		entries: make(map[domain.StateID]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Save stores a copy of the state under a fresh random ID.
func (s *MemoryStateStore) Save(state domain.AuthState, stage string, addIDToState bool) (domain.StateID, error) {
	id := domain.NewStateID()

	saved := state.Copy()
	saved[domain.StateKeyStage] = stage
	if addIDToState {
		saved[domain.StateKeyStateID] = string(id)
		state[domain.StateKeyStateID] = string(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memoryEntry{
		state:  saved,
		stage:  stage,
		expiry: s.now().Add(s.ttl),
	}
	return id, nil
}

// Load retrieves a state, enforcing the stage tag. Expired and unknown IDs
// behave identically.
func (s *MemoryStateStore) Load(id domain.StateID, stage string, allowMissing bool) (domain.AuthState, error) {
	s.mu.Lock()
	entry, exists := s.entries[id]
	if exists && s.now().After(entry.expiry) {
		delete(s.entries, id)
		exists = false
	}
	s.mu.Unlock()

	if !exists {
		if allowMissing {
			return nil, nil
		}
		return nil, domain.StateLostError(id)
	}
	if entry.stage != stage {
		return nil, domain.StageMismatchError(id, stage, entry.stage)
	}
	return entry.state.Copy(), nil
}

// Delete removes a state. Deleting an unknown ID succeeds.
func (s *MemoryStateStore) Delete(id domain.StateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

var _ ports.StateStore = (*MemoryStateStore)(nil)
