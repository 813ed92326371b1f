package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrorCode represents categorized error types.
// These codes are stable and can be used for programmatic error handling.
type ErrorCode string

const (
	// ErrCodeConfig is a bad or missing filter/auth-source configuration,
	// detected eagerly at construction. The component is unusable.
	ErrCodeConfig ErrorCode = "config_error"

	// ErrCodeStateLost means a state identifier is unknown or expired.
	// Recoverable: the user restarts the flow from scratch.
	ErrCodeStateLost ErrorCode = "state_lost"

	// ErrCodeStageMismatch means a state was loaded with the wrong stage.
	// Treated like state loss, but kept distinct for diagnostics.
	ErrCodeStageMismatch ErrorCode = "state_stage_mismatch"

	// ErrCodeNoSupportedIDP means an IDPList intersected with zero known IdPs.
	ErrCodeNoSupportedIDP ErrorCode = "no_supported_idp"

	// ErrCodeNoAvailableIDP means a usable IdP exists but configuration pins
	// this source to one that is not acceptable to the requester.
	ErrCodeNoAvailableIDP ErrorCode = "no_available_idp"

	// ErrCodeNoPassive means a passive request cannot be satisfied without
	// user interaction.
	ErrCodeNoPassive ErrorCode = "no_passive"

	// ErrCodeProxyCountExceeded means the request's ProxyCount reached zero.
	ErrCodeProxyCountExceeded ErrorCode = "proxy_count_exceeded"

	// ErrCodeCardinality is a non-fatal attribute cardinality violation.
	// The processing chain suspends and lets the user decide.
	ErrCodeCardinality ErrorCode = "cardinality_violation"

	// ErrCodeAssertion is a violated precondition, e.g. a missing identifying
	// attribute during identifier generation. Fatal for the request.
	ErrCodeAssertion ErrorCode = "assertion_failure"

	// ErrCodeCollaborator means an external collaborator (metadata store,
	// salt provider, association registry) could not be reached.
	ErrCodeCollaborator ErrorCode = "collaborator_unreachable"
)

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Title returns a user-friendly title for this error code.
func (c ErrorCode) Title() string {
	switch c {
	case ErrCodeConfig:
		return "Configuration Error"
	case ErrCodeStateLost, ErrCodeStageMismatch:
		return "State Information Lost"
	case ErrCodeNoSupportedIDP:
		return "No Supported Identity Provider"
	case ErrCodeNoAvailableIDP:
		return "No Available Identity Provider"
	case ErrCodeNoPassive:
		return "Passive Authentication Not Possible"
	case ErrCodeProxyCountExceeded:
		return "Proxy Count Exceeded"
	case ErrCodeCardinality:
		return "Attribute Cardinality Violation"
	case ErrCodeAssertion:
		return "Assertion Failed"
	case ErrCodeCollaborator:
		return "Service Unavailable"
	default:
		return "Error"
	}
}

// Recoverable reports whether the user can recover by restarting the flow.
func (c ErrorCode) Recoverable() bool {
	switch c {
	case ErrCodeStateLost, ErrCodeStageMismatch, ErrCodeCardinality:
		return true
	}
	return false
}

// AppError is a structured error with a stable code, a message safe to show to
// users, machine-readable parameters for localized rendering, and a track ID
// correlated with server-side logs. Messages and parameters must never contain
// attribute values or secrets.
type AppError struct {
	Code    ErrorCode
	Message string
	Params  map[string]string
	TrackID string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s [track %s]", e.Code, e.Message, e.TrackID)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches AppErrors by code, so callers can write
// errors.Is(err, &AppError{Code: ErrCodeStateLost}).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// newAppError assigns a fresh track ID. Every user-visible error carries one so
// support staff can find the corresponding log entries.
func newAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		TrackID: uuid.NewString(),
	}
}

// ConfigError creates a configuration error.
func ConfigError(format string, args ...any) *AppError {
	return newAppError(ErrCodeConfig, fmt.Sprintf(format, args...))
}

// StateLostError creates an error for an unknown or expired state identifier.
func StateLostError(id StateID) *AppError {
	e := newAppError(ErrCodeStateLost, "The authentication state could not be found; it may have expired. Please retry from the start.")
	e.Params = map[string]string{"%STATEID%": string(id)}
	return e
}

// StageMismatchError creates an error for a state loaded with the wrong stage.
func StageMismatchError(id StateID, expected, actual string) *AppError {
	e := newAppError(ErrCodeStageMismatch, "The authentication state does not belong to this step of the flow. Please retry from the start.")
	e.Params = map[string]string{"%EXPECTED%": expected, "%ACTUAL%": actual}
	return e
}

// NoSupportedIDPError creates a protocol policy error for an IDPList that
// matches none of the known identity providers.
func NoSupportedIDPError() *AppError {
	return newAppError(ErrCodeNoSupportedIDP, "None of the identity providers requested by the service provider are supported.")
}

// NoAvailableIDPError creates a protocol policy error for a configured IdP
// that is excluded by the requester's constraints.
func NoAvailableIDPError() *AppError {
	return newAppError(ErrCodeNoAvailableIDP, "The configured identity provider is not acceptable to the requesting service provider.")
}

// NoPassiveError creates a protocol policy error for a passive request that
// cannot be satisfied without interaction.
func NoPassiveError(message string) *AppError {
	return newAppError(ErrCodeNoPassive, message)
}

// ProxyCountExceededError creates a protocol policy error for an exhausted
// ProxyCount.
func ProxyCountExceededError() *AppError {
	return newAppError(ErrCodeProxyCountExceeded, "The request cannot be proxied any further.")
}

// CardinalityError creates a cardinality violation carrying the offending
// attribute names and their violation descriptions. Attribute values are
// deliberately not included.
func CardinalityError(violations map[string]string) *AppError {
	e := newAppError(ErrCodeCardinality, "One or more attributes have more values than allowed.")
	e.Params = make(map[string]string, len(violations))
	for name, detail := range violations {
		e.Params[name] = detail
	}
	return e
}

// AssertionError creates an assertion failure naming the violated
// precondition. attribute may be empty when no single attribute is at fault.
func AssertionError(attribute, format string, args ...any) *AppError {
	e := newAppError(ErrCodeAssertion, fmt.Sprintf(format, args...))
	if attribute != "" {
		e.Params = map[string]string{"%ATTRIBUTE%": attribute}
	}
	return e
}

// CollaboratorError wraps a failure to reach an external collaborator.
func CollaboratorError(name string, cause error) *AppError {
	e := newAppError(ErrCodeCollaborator, fmt.Sprintf("The %s is currently unavailable.", name))
	e.Params = map[string]string{"%COLLABORATOR%": name}
	e.Cause = cause
	return e
}
