package ports

import "github.com/philiph/saml-fed/internal/core/domain"

// AssociationRegistry is the IdP-side store of live downstream SP sessions.
// Implementations must be safe for concurrent use. The registry is
// authoritative: an association missing from it is treated as already logged
// out, which absorbs races with back-channel logout.
type AssociationRegistry interface {
	// Associations returns all live associations, keyed by association ID.
	Associations() (map[string]domain.Association, error)

	// Add registers a new association, replacing any existing one with the
	// same ID.
	Add(assoc domain.Association) error

	// Terminate removes an association. Idempotent; terminating an unknown
	// ID is not an error. Termination is irreversible.
	Terminate(id string) error
}
