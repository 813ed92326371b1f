package processing

import (
	"gopkg.in/yaml.v3"

	"github.com/philiph/saml-fed/internal/core/domain"
)

func init() {
	RegisterFilter("core:Exec", newExecFilter)
}

type execConfig struct {
	Function string `yaml:"function"`
}

// execFilter runs a pre-registered attribute transformation function. This is
// the extension point replacing administrator-supplied embedded code: the
// function is ordinary compiled Go registered at startup, so no code is
// evaluated at request time. The trust boundary is the same, the mechanism is
// not.
type execFilter struct {
	function string
	fn       ExecFunc
}

func newExecFilter(node *yaml.Node, deps Deps) (Filter, error) {
	var cfg execConfig
	if err := node.Decode(&cfg); err != nil {
		return nil, domain.ConfigError("core:Exec: invalid configuration: %v", err)
	}
	if cfg.Function == "" {
		return nil, domain.ConfigError("core:Exec: missing function name")
	}
	fn, ok := deps.Funcs[cfg.Function]
	if !ok {
		return nil, domain.ConfigError("core:Exec: function %q is not registered", cfg.Function)
	}
	return &execFilter{function: cfg.Function, fn: fn}, nil
}

func (f *execFilter) Name() string { return "core:Exec" }

func (f *execFilter) Process(req *Request) (*Suspension, error) {
	req.Attributes = f.fn(req.Attributes)
	return nil, nil
}
