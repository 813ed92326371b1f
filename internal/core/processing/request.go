// Package processing implements the attribute processing chain: an ordered
// pipeline of filters that transform the attribute set of an authenticated
// request between authentication and final response delivery.
package processing

import (
	"github.com/philiph/saml-fed/internal/core/domain"
)

// State keys used to persist a suspended processing request.
const (
	stateKeyAttributes  = "processing:attributes"
	stateKeyUserID      = "processing:user_id"
	stateKeySource      = "processing:source"
	stateKeyDestination = "processing:destination"
	stateKeyResumeIndex = "processing:resume_index"
	stateKeyBookkeeping = "processing:bookkeeping"
)

// StageProcessing tags states saved by a suspended chain.
const StageProcessing = "samlfed:processing:resume"

// Request is the shared mutable context a filter chain operates on. Filters
// mutate Attributes (and occasionally State) in place. The structure is
// transient; it is only serialized when a filter suspends the chain for user
// interaction.
type Request struct {
	// Attributes is the normalized attribute set under transformation.
	Attributes domain.AttributeSet

	// Source is the entity that authenticated the user (usually an IdP).
	Source *domain.EntityMetadata

	// Destination is the entity that will receive the attributes.
	Destination *domain.EntityMetadata

	// UserID is the user identifier used by pseudonymous identifier
	// generation. Set by an identifier-selecting filter or the auth source.
	UserID string

	// State carries free-form protocol bookkeeping (core:SP, requester IDs,
	// cardinality violation records).
	State domain.AuthState
}

// NewRequest creates a Request with an empty bookkeeping state.
func NewRequest(attrs domain.AttributeSet, source, destination *domain.EntityMetadata) *Request {
	return &Request{
		Attributes:  attrs,
		Source:      source,
		Destination: destination,
		State:       domain.AuthState{},
	}
}

// ToState serializes the request into an AuthState blob so a suspended chain
// can be resumed in a later execution.
func (r *Request) ToState() domain.AuthState {
	state := domain.AuthState{
		stateKeyAttributes: r.Attributes.ToRaw(),
		stateKeyUserID:     r.UserID,
	}
	if r.Source != nil {
		state[stateKeySource] = r.Source.Snapshot()
	}
	if r.Destination != nil {
		state[stateKeyDestination] = r.Destination.Snapshot()
	}
	if len(r.State) > 0 {
		state[stateKeyBookkeeping] = map[string]any(r.State)
	}
	return state
}

// RequestFromState rebuilds a Request from a state blob produced by ToState.
func RequestFromState(state domain.AuthState) (*Request, error) {
	raw := state.Map(stateKeyAttributes)
	if raw == nil {
		raw = map[string]any{}
	}
	attrs, err := domain.Normalize(raw)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Attributes:  attrs,
		Source:      domain.FromMetadataSnapshot(state.Map(stateKeySource)),
		Destination: domain.FromMetadataSnapshot(state.Map(stateKeyDestination)),
		UserID:      state.String(stateKeyUserID, ""),
		State:       domain.AuthState{},
	}
	if bk := state.Map(stateKeyBookkeeping); bk != nil {
		req.State = domain.AuthState(bk)
	}
	return req, nil
}
