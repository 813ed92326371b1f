package samlfed

import (
	"github.com/philiph/saml-fed/internal/adapters/driven/metadata"
	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// Re-export metadata types from domain package
type EntityMetadata = domain.EntityMetadata
type Endpoint = domain.Endpoint
type MetadataProvider = ports.MetadataProvider

// Re-export metadata set constants
const (
	MetadataSetSPRemote  = domain.MetadataSetSPRemote
	MetadataSetIdPRemote = domain.MetadataSetIdPRemote
	MetadataSetSPHosted  = domain.MetadataSetSPHosted
	MetadataSetIdPHosted = domain.MetadataSetIdPHosted
)

// Re-export SAML binding URI constants
const (
	BindingHTTPRedirect = domain.BindingHTTPRedirect
	BindingHTTPPost     = domain.BindingHTTPPost
	BindingSOAP         = domain.BindingSOAP
)

// ErrEntityNotFound is returned for entities absent from a metadata set.
var ErrEntityNotFound = ports.ErrEntityNotFound

// Re-export metadata provider implementations
type InMemoryMetadataProvider = metadata.InMemoryProvider
type FileMetadataProvider = metadata.FileProvider

var (
	NewEntityMetadata           = domain.NewEntityMetadata
	NewInMemoryMetadataProvider = metadata.NewInMemoryProvider
	NewFileMetadataProvider     = metadata.NewFileProvider
	EndpointByBindings          = domain.EndpointByBindings
)
