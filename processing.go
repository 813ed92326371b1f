package samlfed

import (
	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/processing"
)

// Re-export attribute types from domain package
type AttributeSet = domain.AttributeSet

var NormalizeAttributes = domain.Normalize

// Re-export processing chain types
type Filter = processing.Filter
type FilterFactory = processing.FilterFactory
type FilterDeps = processing.Deps
type ConfiguredFilter = processing.ConfiguredFilter
type Chain = processing.Chain
type Request = processing.Request
type Suspension = processing.Suspension
type ExecFunc = processing.ExecFunc

// StateIDParam is the query parameter appended to suspension redirect URLs.
const StateIDParam = processing.StateIDParam

var (
	RegisterFilter   = processing.RegisterFilter
	NewChain         = processing.NewChain
	ParseChain       = processing.ParseChain
	NewRequest       = processing.NewRequest
	RequestFromState = processing.RequestFromState

	WithChainStateStore = processing.WithStateStore
	WithChainMetrics    = processing.WithMetrics
	WithChainLogger     = processing.WithLogger
)
