package domain

import "time"

// LogoutStatus tracks one downstream SP through iframe-based single logout.
type LogoutStatus string

const (
	// LogoutOnHold: the association is queued; the logout page has rendered
	// but the client has not started polling yet.
	LogoutOnHold LogoutStatus = "onhold"

	// LogoutInProgress: the client iframe has started this SP's logout and a
	// timeout deadline has been fixed.
	LogoutInProgress LogoutStatus = "inprogress"

	// LogoutCompleted: the SP confirmed logout, or disappeared from the live
	// association registry (logout succeeded through another channel).
	LogoutCompleted LogoutStatus = "completed"

	// LogoutFailed: the SP reported failure or its timeout elapsed.
	LogoutFailed LogoutStatus = "failed"
)

// Terminal reports whether the status will never change again.
func (s LogoutStatus) Terminal() bool {
	return s == LogoutCompleted || s == LogoutFailed
}

// CanTransition reports whether moving from s to next is a legal step of the
// per-association logout state machine.
func (s LogoutStatus) CanTransition(next LogoutStatus) bool {
	switch s {
	case LogoutOnHold:
		return next == LogoutInProgress || next == LogoutCompleted || next == LogoutFailed
	case LogoutInProgress:
		return next == LogoutCompleted || next == LogoutFailed
	}
	return false
}

// Association represents one downstream SP session held by the IdP side.
// Created on successful SSO to that SP, mutated as logout progresses, and
// destroyed when logout completes or the parent session expires.
type Association struct {
	// ID uniquely identifies this association within the registry.
	ID string

	// SPEntityID is the downstream service provider's entity ID.
	SPEntityID string

	// NameID is the subject identifier issued to the SP.
	NameID string

	// NameIDFormat is the format URI of NameID.
	NameIDFormat string

	// SessionIndex is the IdP session index shared with the SP.
	SessionIndex string

	// Expires is when the parent session expires.
	Expires time.Time

	// LogoutTimeout is this SP's logout timeout. Zero means the orchestrator
	// default applies.
	LogoutTimeout time.Duration
}
