package metadata

import (
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// FileProvider loads metadata sets from YAML files in a directory. Each set
// lives in <dir>/<set>.yaml as a map from entity ID to an entity document:
//
//	https://sp.example.org/metadata:
//	  name: Example SP
//	  SingleLogoutService:
//	    - Binding: urn:oasis:names:tc:SAML:2.0:bindings:HTTP-Redirect
//	      Location: https://sp.example.org/slo
//
// Sets are parsed lazily on first access and cached. Reload discards the
// cache.
type FileProvider struct {
	dir string

	mu    sync.Mutex
	cache map[string]map[string]*domain.EntityMetadata
}

// entityDoc is the YAML shape of one entity. All scalar options stay in the
// inline map; the endpoint lists are pulled into typed fields.
type entityDoc struct {
	SingleSignOnService      []endpointDoc  `yaml:"SingleSignOnService"`
	SingleLogoutService      []endpointDoc  `yaml:"SingleLogoutService"`
	AssertionConsumerService []endpointDoc  `yaml:"AssertionConsumerService"`
	Options                  map[string]any `yaml:",inline"`
}

type endpointDoc struct {
	Binding          string `yaml:"Binding"`
	Location         string `yaml:"Location"`
	ResponseLocation string `yaml:"ResponseLocation"`
	Index            int    `yaml:"index"`
	IsDefault        bool   `yaml:"isDefault"`
}

// NewFileProvider creates a provider reading from dir. The directory must
// exist; individual set files may be absent.
func NewFileProvider(dir string) (*FileProvider, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, domain.ConfigError("metadata directory %q: %v", dir, err)
	}
	if !info.IsDir() {
		return nil, domain.ConfigError("metadata path %q is not a directory", dir)
	}
	return &FileProvider{
		dir:   dir,
		cache: make(map[string]map[string]*domain.EntityMetadata),
	}, nil
}

// GetMetadata returns the metadata for one entity.
func (p *FileProvider) GetMetadata(entityID, set string) (*domain.EntityMetadata, error) {
	entities, err := p.load(set)
	if err != nil {
		return nil, err
	}
	if meta, ok := entities[entityID]; ok {
		return meta, nil
	}
	return nil, ports.ErrEntityNotFound
}

// GetList returns all metadata in a set, keyed by entity ID.
func (p *FileProvider) GetList(set string) (map[string]*domain.EntityMetadata, error) {
	entities, err := p.load(set)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*domain.EntityMetadata, len(entities))
	for id, meta := range entities {
		out[id] = meta
	}
	return out, nil
}

// Reload discards the parsed cache so the next access re-reads from disk.
func (p *FileProvider) Reload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[string]map[string]*domain.EntityMetadata)
}

func (p *FileProvider) load(set string) (map[string]*domain.EntityMetadata, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entities, ok := p.cache[set]; ok {
		return entities, nil
	}

	path := filepath.Join(p.dir, set+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// A missing set file is an empty set, not an error.
			empty := map[string]*domain.EntityMetadata{}
			p.cache[set] = empty
			return empty, nil
		}
		return nil, domain.ConfigError("metadata set %q: %v", set, err)
	}

	var docs map[string]entityDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, domain.ConfigError("metadata set %q: %v", set, err)
	}

	entities := make(map[string]*domain.EntityMetadata, len(docs))
	for entityID, doc := range docs {
		meta := domain.NewEntityMetadata(entityID, set, doc.Options)
		meta.SingleSignOnServices = endpointsFromDocs(doc.SingleSignOnService)
		meta.SingleLogoutServices = endpointsFromDocs(doc.SingleLogoutService)
		meta.AssertionConsumerServices = endpointsFromDocs(doc.AssertionConsumerService)
		entities[entityID] = meta
	}

	p.cache[set] = entities
	return entities, nil
}

func endpointsFromDocs(docs []endpointDoc) []domain.Endpoint {
	if len(docs) == 0 {
		return nil
	}
	out := make([]domain.Endpoint, len(docs))
	for i, d := range docs {
		out[i] = domain.Endpoint{
			Binding:          d.Binding,
			Location:         d.Location,
			ResponseLocation: d.ResponseLocation,
			Index:            d.Index,
			IsDefault:        d.IsDefault,
		}
	}
	return out
}

var _ ports.MetadataProvider = (*FileProvider)(nil)
