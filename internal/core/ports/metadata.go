package ports

import (
	"errors"

	"github.com/philiph/saml-fed/internal/core/domain"
)

// ErrEntityNotFound is returned when no entity with the requested ID exists
// in the requested metadata set.
var ErrEntityNotFound = errors.New("entity not found in metadata")

// MetadataProvider is the port interface for entity metadata lookup. The
// storage and refresh mechanics live outside this core.
type MetadataProvider interface {
	// GetMetadata returns the metadata of one entity from the given set.
	// Returns an error matching ErrEntityNotFound when the entity is unknown.
	GetMetadata(entityID, set string) (*domain.EntityMetadata, error)

	// GetList returns all entities of the given set, keyed by entity ID.
	GetList(set string) (map[string]*domain.EntityMetadata, error)
}
