package samlfed

import (
	"github.com/philiph/saml-fed/internal/core/domain"
)

// Re-export error types from domain package
type ErrorCode = domain.ErrorCode
type AppError = domain.AppError

// Re-export error code constants
const (
	ErrCodeConfig             = domain.ErrCodeConfig
	ErrCodeStateLost          = domain.ErrCodeStateLost
	ErrCodeStageMismatch      = domain.ErrCodeStageMismatch
	ErrCodeNoSupportedIDP     = domain.ErrCodeNoSupportedIDP
	ErrCodeNoAvailableIDP     = domain.ErrCodeNoAvailableIDP
	ErrCodeNoPassive          = domain.ErrCodeNoPassive
	ErrCodeProxyCountExceeded = domain.ErrCodeProxyCountExceeded
	ErrCodeCardinality        = domain.ErrCodeCardinality
	ErrCodeAssertion          = domain.ErrCodeAssertion
	ErrCodeCollaborator       = domain.ErrCodeCollaborator
)

// Re-export error constructors
var (
	ConfigError             = domain.ConfigError
	StateLostError          = domain.StateLostError
	StageMismatchError      = domain.StageMismatchError
	NoSupportedIDPError     = domain.NoSupportedIDPError
	NoAvailableIDPError     = domain.NoAvailableIDPError
	NoPassiveError          = domain.NoPassiveError
	ProxyCountExceededError = domain.ProxyCountExceededError
	CardinalityError        = domain.CardinalityError
	AssertionError          = domain.AssertionError
	CollaboratorError       = domain.CollaboratorError
)
