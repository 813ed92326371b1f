// Package logout implements the IdP-side iframe logout orchestration: it
// tracks per-association logout progress across multiple downstream SPs with
// fixed timeouts and partial-failure accounting. The design is poll-driven;
// the client browser re-invokes the endpoint and no execution ever blocks.
package logout

import (
	"time"

	"go.uber.org/zap"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// StageLogout tags states saved by the orchestrator.
const StageLogout = "samlfed:idp:logout"

// DefaultTimeout applies to associations without a configured logout
// timeout.
const DefaultTimeout = 5 * time.Second

// State keys used by the orchestrator.
const (
	stateKeyAssociations = "core:Logout:Associations"
	stateKeyInitiator    = "core:Logout:Initiator"
)

// AssociationStatus is the tracked progress of one downstream SP's logout.
type AssociationStatus struct {
	SPEntityID string
	Status     domain.LogoutStatus

	// Deadline is fixed when the association first enters inprogress. It is
	// computed exactly once and never recomputed on later polls.
	Deadline time.Time
}

// Report is a client-side outcome report for one association, delivered by
// the polling endpoint.
type Report struct {
	AssociationID string
	Success       bool
}

// Summary is the aggregate view returned by each poll.
type Summary struct {
	// Statuses maps association ID to its current status.
	Statuses map[string]AssociationStatus

	// Done is true once no association remains non-terminal.
	Done bool

	// Failed is true when any association failed or the user cancelled the
	// initiating SP's logout.
	Failed bool
}

// Orchestrator drives multi-SP logout for one IdP session. All state lives
// in the StateStore; each poll is an independent execution.
type Orchestrator struct {
	states   ports.StateStore
	registry ports.AssociationRegistry
	metrics  ports.MetricsRecorder
	logger   *zap.Logger

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMetrics sets the metrics recorder.
func WithMetrics(m ports.MetricsRecorder) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock replaces the wall clock. For testing.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator.
func New(states ports.StateStore, registry ports.AssociationRegistry, opts ...Option) (*Orchestrator, error) {
	if states == nil || registry == nil {
		return nil, domain.ConfigError("logout orchestrator: state store and association registry are required")
	}
	o := &Orchestrator{
		states:   states,
		registry: registry,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Start snapshots the live associations into a new logout flow and persists
// it. initiatorID names the association whose SP initiated the logout; it may
// be empty for IdP-initiated logout. Returns the state ID the logout page
// polls with.
func (o *Orchestrator) Start(state domain.AuthState, initiatorID string) (domain.StateID, error) {
	assocs, err := o.registry.Associations()
	if err != nil {
		return "", domain.CollaboratorError("association registry", err)
	}

	tracked := make(map[string]any, len(assocs))
	for id, assoc := range assocs {
		tracked[id] = map[string]any{
			"sp":      assoc.SPEntityID,
			"status":  string(domain.LogoutOnHold),
			"timeout": assoc.LogoutTimeout.Seconds(),
		}
	}

	saved := state.Copy()
	saved[stateKeyAssociations] = tracked
	if initiatorID != "" {
		saved[stateKeyInitiator] = initiatorID
	}

	id, err := o.states.Save(saved, StageLogout, true)
	if err != nil {
		return "", err
	}

	o.logger.Info("logout flow started",
		zap.Int("associations", len(tracked)),
		zap.String("state_id", string(id)))
	return id, nil
}

// Poll advances the logout flow: it applies client reports, starts held
// associations, enforces timeouts, reconciles against the live registry, and
// re-persists the state. Each poll loads the state exactly once and saves it
// back under the same ID semantics (a fresh ID is returned for the next
// poll).
func (o *Orchestrator) Poll(id domain.StateID, reports []Report) (domain.StateID, *Summary, error) {
	state, err := o.states.Load(id, StageLogout, false)
	if err != nil {
		return "", nil, err
	}

	live, err := o.registry.Associations()
	if err != nil {
		return "", nil, domain.CollaboratorError("association registry", err)
	}

	tracked := state.Map(stateKeyAssociations)
	if tracked == nil {
		tracked = map[string]any{}
	}

	reported := make(map[string]bool, len(reports))
	for _, r := range reports {
		reported[r.AssociationID] = r.Success
	}

	now := o.now()
	summary := &Summary{Statuses: make(map[string]AssociationStatus, len(tracked))}

	for assocID, raw := range tracked {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		status := o.advance(assocID, entry, live, reported, now)
		summary.Statuses[assocID] = status
		entry["status"] = string(status.Status)
	}

	summary.Done = o.allTerminal(summary.Statuses)
	summary.Failed = state.Bool(domain.StateKeyFailed, false) || o.anyFailed(summary.Statuses)

	newID, err := o.states.Save(state, StageLogout, true)
	if err != nil {
		return "", nil, err
	}
	// The consumed state is superseded by the re-save; discard it so a stale
	// ID cannot replay an old summary.
	_ = o.states.Delete(id)
	return newID, summary, nil
}

// advance applies the per-association state machine for one poll.
func (o *Orchestrator) advance(assocID string, entry map[string]any, live map[string]domain.Association, reported map[string]bool, now time.Time) AssociationStatus {
	e := domain.AuthState(entry)
	status := AssociationStatus{
		SPEntityID: e.String("sp", ""),
		Status:     domain.LogoutStatus(e.String("status", string(domain.LogoutOnHold))),
	}
	if deadline := e.String("deadline", ""); deadline != "" {
		if t, err := time.Parse(time.RFC3339Nano, deadline); err == nil {
			status.Deadline = t
		}
	}

	if status.Status.Terminal() {
		return status
	}

	// An association gone from the live registry completed through another
	// channel (e.g. back-channel SOAP logout). That race is expected.
	if _, exists := live[assocID]; !exists {
		return o.complete(assocID, entry, status, false, "already terminated")
	}

	if success, ok := reported[assocID]; ok {
		if success {
			return o.complete(assocID, entry, status, true, "client report")
		}
		return o.fail(entry, status, "client report")
	}

	switch status.Status {
	case domain.LogoutOnHold:
		// First poll: start the association and fix its deadline once.
		status.Status = domain.LogoutInProgress
		timeout := DefaultTimeout
		if secs := e.Int("timeout", 0); secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
		status.Deadline = now.Add(timeout)
		entry["status"] = string(status.Status)
		entry["deadline"] = status.Deadline.Format(time.RFC3339Nano)

	case domain.LogoutInProgress:
		// A timed-out association is never silently left inprogress.
		if !status.Deadline.IsZero() && now.After(status.Deadline) {
			return o.fail(entry, status, "timeout")
		}
	}

	return status
}

func (o *Orchestrator) complete(assocID string, entry map[string]any, status AssociationStatus, deregister bool, reason string) AssociationStatus {
	status.Status = domain.LogoutCompleted
	entry["status"] = string(status.Status)

	// Completed associations are deregistered immediately; this is
	// irreversible. An association already gone from the live registry has
	// nothing left to terminate.
	if deregister {
		if err := o.registry.Terminate(assocID); err != nil {
			o.logger.Warn("failed to terminate association",
				zap.String("association", assocID),
				zap.Error(err))
		}
	}

	o.recordOutcome(string(domain.LogoutCompleted))
	o.logger.Info("association logout completed",
		zap.String("association", assocID),
		zap.String("sp", status.SPEntityID),
		zap.String("reason", reason))
	return status
}

func (o *Orchestrator) fail(entry map[string]any, status AssociationStatus, reason string) AssociationStatus {
	status.Status = domain.LogoutFailed
	entry["status"] = string(status.Status)

	o.recordOutcome(string(domain.LogoutFailed))
	o.logger.Warn("association logout failed",
		zap.String("sp", status.SPEntityID),
		zap.String("reason", reason))
	return status
}

// Cancel records the user's explicit cancellation of the initiating SP's
// logout. Cancellation is a first-class outcome: the flow still finishes,
// as a partial failure. The initiating association becomes terminal here so
// the next poll reports done without waiting out its timeout.
func (o *Orchestrator) Cancel(id domain.StateID) (domain.StateID, error) {
	state, err := o.states.Load(id, StageLogout, false)
	if err != nil {
		return "", err
	}
	state[domain.StateKeyFailed] = true

	if initiator := state.String(stateKeyInitiator, ""); initiator != "" {
		if tracked := state.Map(stateKeyAssociations); tracked != nil {
			if entry, ok := tracked[initiator].(map[string]any); ok {
				entry["status"] = string(domain.LogoutFailed)
				o.recordOutcome(string(domain.LogoutFailed))
				o.logger.Info("initiating association cancelled",
					zap.String("association", initiator))
			}
		}
	}

	newID, err := o.states.Save(state, StageLogout, true)
	if err != nil {
		return "", err
	}
	_ = o.states.Delete(id)
	return newID, nil
}

// Finish reports the aggregate outcome once all associations are terminal.
// Calling it earlier returns done=false and the caller keeps polling.
func (o *Orchestrator) Finish(id domain.StateID) (*Summary, error) {
	newID, summary, err := o.Poll(id, nil)
	if err != nil {
		return nil, err
	}
	if !summary.Done {
		o.logger.Debug("logout not yet complete",
			zap.String("state_id", string(newID)))
		return summary, nil
	}

	failed := 0
	for _, st := range summary.Statuses {
		if st.Status == domain.LogoutFailed {
			failed++
		}
	}
	o.logger.Info("logout flow finished",
		zap.Int("associations", len(summary.Statuses)),
		zap.Int("failed", failed),
		zap.Bool("partial_failure", summary.Failed))

	// Flow state is no longer needed; removal is best-effort.
	_ = o.states.Delete(newID)
	return summary, nil
}

func (o *Orchestrator) allTerminal(statuses map[string]AssociationStatus) bool {
	for _, st := range statuses {
		if !st.Status.Terminal() {
			return false
		}
	}
	return true
}

func (o *Orchestrator) anyFailed(statuses map[string]AssociationStatus) bool {
	for _, st := range statuses {
		if st.Status == domain.LogoutFailed {
			return true
		}
	}
	return false
}

func (o *Orchestrator) recordOutcome(status string) {
	if o.metrics != nil {
		o.metrics.RecordLogoutAssociation(status)
	}
}
