package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// StateID identifies a saved authentication or logout context. IDs are
// random and unguessable: 128 bits from crypto/rand, hex encoded.
type StateID string

// NewStateID generates a fresh random state identifier.
func NewStateID() StateID {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; if it does, the
		// process must not continue issuing predictable identifiers.
		panic(fmt.Sprintf("samlfed: crypto/rand unavailable: %v", err))
	}
	return StateID(hex.EncodeToString(buf))
}

// Well-known AuthState keys. The state blob is otherwise opaque; these keys
// form the contract between the components that write and read it.
const (
	// StateKeyStateID holds the state's own identifier when a flow needs to
	// recover the ID from the loaded blob (Save with addIDToState=true).
	StateKeyStateID = "core:state_id"

	// StateKeyStage holds the stage tag embedded in the serialized form.
	StateKeyStage = "core:stage"

	// StateKeySP identifies the downstream service provider in proxy flows.
	StateKeySP = "core:SP"

	// StateKeyFailed marks a partially failed logout flow.
	StateKeyFailed = "core:Failed"

	// StateKeyReturnCallback names the completion callback to invoke when the
	// flow finishes, preserved across reauthentication detours.
	StateKeyReturnCallback = "ReturnCallback"

	// StateKeyRelayState carries the requester-supplied RelayState.
	StateKeyRelayState = "saml:RelayState"
)

// AuthState is an opaque, serializable key-value context that survives HTTP
// redirects. Values must be JSON-serializable; components read them through
// the typed accessors below and treat missing keys as "use the default".
type AuthState map[string]any

// Copy returns a shallow copy. Nested values are shared; callers that mutate
// nested structures must copy them explicitly.
func (s AuthState) Copy() AuthState {
	out := make(AuthState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// String returns the string value stored under key, or def if the key is
// absent or not a string.
func (s AuthState) String(key, def string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return def
}

// Bool returns the boolean stored under key, or def if absent.
func (s AuthState) Bool(key string, def bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return def
}

// Int returns the integer stored under key, or def if absent. JSON
// deserialization produces float64, which is accepted here.
func (s AuthState) Int(key string, def int) int {
	switch v := s[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// Strings returns the string list stored under key, or nil if absent.
// Accepts both []string and the []any form produced by JSON deserialization.
func (s AuthState) Strings(key string) []string {
	switch v := s[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// Map returns the nested map stored under key, or nil if absent.
func (s AuthState) Map(key string) map[string]any {
	if v, ok := s[key].(map[string]any); ok {
		return v
	}
	return nil
}

// Has reports whether key is present.
func (s AuthState) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// ID returns the embedded state identifier, if one was saved with
// addIDToState=true.
func (s AuthState) ID() StateID {
	return StateID(s.String(StateKeyStateID, ""))
}
