package processing

import (
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// Suspension signals that a filter needs user interaction. The chain persists
// the whole request, appends the state identifier to the redirect URL, and
// ends the current execution; resumption is a brand-new execution that
// re-enters the chain at the filter's successor.
type Suspension struct {
	// RedirectURL is where the user must be sent. The chain appends the
	// StateID query parameter after persisting.
	RedirectURL string

	// StateID identifies the persisted request. Set by the chain.
	StateID domain.StateID
}

// Filter is one step of the attribute processing chain. Process may
//
//	(a) mutate req and return (nil, nil) to continue with the next filter,
//	(b) return a Suspension to interrupt the chain for user interaction,
//	(c) return a typed error to abort the chain.
//
// Filter configuration is validated at construction, never per request.
type Filter interface {
	// Name returns the filter's configured type name, e.g. "core:AttributeAdd".
	Name() string

	// Process runs the filter against the shared request context.
	Process(req *Request) (*Suspension, error)
}

// ExecFunc is an administrator-registered pure attribute transformation, the
// extension point replacing embedded code execution. Registering one is a
// deliberate administrative trust decision: the function runs with full
// access to every attribute of every user.
type ExecFunc func(domain.AttributeSet) domain.AttributeSet

// Deps carries the collaborators a filter factory may need. Factories take
// what they use and ignore the rest.
type Deps struct {
	Salt   ports.SaltProvider
	Logger *zap.Logger

	// Funcs are the registered extension functions available to core:Exec.
	Funcs map[string]ExecFunc
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// FilterFactory builds a filter from its raw YAML configuration node,
// validating eagerly. A factory must reject bad configuration here; returning
// a filter that fails per-request is a bug.
type FilterFactory func(node *yaml.Node, deps Deps) (Filter, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]FilterFactory{}
)

// RegisterFilter registers a filter factory under its type name. Called from
// init functions of the packages providing filters; a duplicate name panics.
func RegisterFilter(name string, factory FilterFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic("processing: filter type registered twice: " + name)
	}
	registry[name] = factory
}

func lookupFactory(name string) (FilterFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}
