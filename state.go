package samlfed

import (
	"github.com/philiph/saml-fed/internal/adapters/driven/state"
	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// Re-export state types from domain package
type AuthState = domain.AuthState
type StateID = domain.StateID

// StateStore is the port interface for flow state persistence.
type StateStore = ports.StateStore

// Re-export state key constants
const (
	StateKeyStateID        = domain.StateKeyStateID
	StateKeyStage          = domain.StateKeyStage
	StateKeySP             = domain.StateKeySP
	StateKeyFailed         = domain.StateKeyFailed
	StateKeyReturnCallback = domain.StateKeyReturnCallback
	StateKeyRelayState     = domain.StateKeyRelayState
)

// Re-export state store implementations
type MemoryStateStore = state.MemoryStateStore
type JWTStateStore = state.JWTStateStore
type PostgresStateStore = state.PostgresStateStore
type InstrumentedStateStore = state.InstrumentedStateStore

var (
	NewStateID                = domain.NewStateID
	NewMemoryStateStore       = state.NewMemoryStateStore
	NewJWTStateStore          = state.NewJWTStateStore
	NewPostgresStateStore     = state.NewPostgresStateStore
	NewInstrumentedStateStore = state.NewInstrumentedStateStore
)
