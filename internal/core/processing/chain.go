package processing

import (
	"net/url"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// StateIDParam is the query parameter the chain appends to a suspension
// redirect so the resume endpoint can recover the persisted request.
const StateIDParam = "StateId"

// ConfiguredFilter pairs a filter with its configured priority. Filters run
// in ascending priority order; ties keep configuration order.
type ConfiguredFilter struct {
	Priority int
	Filter   Filter
}

// Chain runs filters in a strict, configured order against a shared request.
// Errors are not swallowed: the chain aborts on the first failing filter and
// lets the caller render an appropriate page.
type Chain struct {
	filters []ConfiguredFilter
	states  ports.StateStore
	metrics ports.MetricsRecorder
	logger  *zap.Logger
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithStateStore sets the store used to persist suspended requests. A chain
// without a state store fails any suspension with a configuration error.
func WithStateStore(store ports.StateStore) ChainOption {
	return func(c *Chain) { c.states = store }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m ports.MetricsRecorder) ChainOption {
	return func(c *Chain) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ChainOption {
	return func(c *Chain) { c.logger = l }
}

// NewChain creates a chain from already-constructed filters. The slice is
// sorted stably by priority.
func NewChain(filters []ConfiguredFilter, opts ...ChainOption) *Chain {
	sorted := append([]ConfiguredFilter(nil), filters...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	c := &Chain{filters: sorted, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// chainConfig is the YAML shape of a filter chain configuration.
type chainConfig struct {
	AuthProc []yaml.Node `yaml:"authproc"`
}

type filterHeader struct {
	Priority int    `yaml:"priority"`
	Type     string `yaml:"type"`
}

// ParseChain builds a chain from YAML configuration. Every filter's
// configuration is validated here, before any request is processed; a single
// bad filter makes the whole chain unusable.
func ParseChain(data []byte, deps Deps, opts ...ChainOption) (*Chain, error) {
	var cfg chainConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, domain.ConfigError("invalid processing chain configuration: %v", err)
	}

	filters := make([]ConfiguredFilter, 0, len(cfg.AuthProc))
	for i := range cfg.AuthProc {
		node := &cfg.AuthProc[i]

		var header filterHeader
		if err := node.Decode(&header); err != nil {
			return nil, domain.ConfigError("authproc entry %d is not a filter definition: %v", i, err)
		}
		if header.Type == "" {
			return nil, domain.ConfigError("authproc entry %d is missing a filter type", i)
		}

		factory, ok := lookupFactory(header.Type)
		if !ok {
			return nil, domain.ConfigError("unknown filter type %q", header.Type)
		}

		filter, err := factory(node, deps)
		if err != nil {
			return nil, err
		}
		filters = append(filters, ConfiguredFilter{Priority: header.Priority, Filter: filter})
	}

	return NewChain(filters, opts...), nil
}

// Len returns the number of configured filters.
func (c *Chain) Len() int {
	return len(c.filters)
}

// Run processes the request through every filter in order. It returns a
// non-nil Suspension when a filter interrupted the chain; the request has
// then been persisted and the caller must redirect the user and end the
// current execution.
func (c *Chain) Run(req *Request) (*Suspension, error) {
	return c.runFrom(req, 0)
}

// Resume re-enters the chain from a state persisted by a suspension. The
// state must already have been loaded (with StageProcessing) by the caller;
// processing continues at the suspending filter's successor.
func (c *Chain) Resume(state domain.AuthState) (*Request, *Suspension, error) {
	req, err := RequestFromState(state)
	if err != nil {
		return nil, nil, err
	}

	index := state.Int(stateKeyResumeIndex, 0)
	if index < 0 || index > len(c.filters) {
		return nil, nil, domain.StateLostError(state.ID())
	}

	susp, err := c.runFrom(req, index)
	return req, susp, err
}

func (c *Chain) runFrom(req *Request, start int) (*Suspension, error) {
	for i := start; i < len(c.filters); i++ {
		filter := c.filters[i].Filter

		susp, err := filter.Process(req)
		if err != nil {
			c.recordFilter(filter.Name(), "error")
			c.logger.Warn("processing filter failed",
				zap.String("filter", filter.Name()),
				zap.Error(err))
			return nil, err
		}
		if susp == nil {
			c.recordFilter(filter.Name(), "continue")
			continue
		}

		c.recordFilter(filter.Name(), "suspend")
		if err := c.persist(req, i+1, susp); err != nil {
			return nil, err
		}
		c.logger.Info("processing chain suspended",
			zap.String("filter", filter.Name()),
			zap.String("state_id", string(susp.StateID)))
		return susp, nil
	}
	return nil, nil
}

// persist saves the full request plus the continuation index, then rewrites
// the suspension's redirect URL to carry the state identifier.
func (c *Chain) persist(req *Request, nextIndex int, susp *Suspension) error {
	if c.states == nil {
		return domain.ConfigError("processing chain has no state store but a filter tried to suspend")
	}

	state := req.ToState()
	state[stateKeyResumeIndex] = nextIndex

	id, err := c.states.Save(state, StageProcessing, true)
	if err != nil {
		return err
	}
	susp.StateID = id

	target, err := url.Parse(susp.RedirectURL)
	if err != nil {
		return domain.ConfigError("filter produced an invalid redirect URL %q: %v", susp.RedirectURL, err)
	}
	q := target.Query()
	q.Set(StateIDParam, string(id))
	target.RawQuery = q.Encode()
	susp.RedirectURL = target.String()
	return nil
}

func (c *Chain) recordFilter(name, outcome string) {
	if c.metrics != nil {
		c.metrics.RecordFilterRun(name, outcome)
	}
}
