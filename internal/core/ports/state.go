package ports

import "github.com/philiph/saml-fed/internal/core/domain"

// StateStore persists opaque authentication/logout contexts across HTTP
// redirects. Implementations must be safe for concurrent use and are expected
// to expire entries by TTL; state loss is a normal condition that callers
// surface as a "please retry" error, never as a crash.
type StateStore interface {
	// Save serializes state under a fresh unguessable identifier, tagged with
	// stage. When addIDToState is true, the identifier is embedded into the
	// state before serialization so a later component can recover it from the
	// loaded blob.
	Save(state domain.AuthState, stage string, addIDToState bool) (domain.StateID, error)

	// Load retrieves and deserializes the state saved under id. It fails
	// with an AppError of code state_lost when the id is unknown or expired,
	// unless allowMissing is true, in which case it returns (nil, nil).
	// It fails with code state_stage_mismatch when the stored stage differs
	// from the requested one; allowMissing does not suppress that error.
	//
	// A state is loaded exactly once per resume point: callers that continue
	// past a resume point must re-save.
	Load(id domain.StateID, stage string, allowMissing bool) (domain.AuthState, error)

	// Delete removes the state saved under id. Best-effort and idempotent;
	// deleting a missing id is not an error.
	Delete(id domain.StateID) error
}
