package state

import (
	"errors"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// InstrumentedStateStore wraps any StateStore and records every operation on
// a MetricsRecorder. The wrapped store's behavior is unchanged.
type InstrumentedStateStore struct {
	inner   ports.StateStore
	metrics ports.MetricsRecorder
}

// NewInstrumentedStateStore wraps inner so save/load/delete outcomes are
// recorded. A nil recorder returns inner unwrapped.
func NewInstrumentedStateStore(inner ports.StateStore, metrics ports.MetricsRecorder) ports.StateStore {
	if metrics == nil {
		return inner
	}
	return &InstrumentedStateStore{inner: inner, metrics: metrics}
}

func (s *InstrumentedStateStore) Save(state domain.AuthState, stage string, addIDToState bool) (domain.StateID, error) {
	id, err := s.inner.Save(state, stage, addIDToState)
	if err != nil {
		s.metrics.RecordStateOp("save", "error")
	} else {
		s.metrics.RecordStateOp("save", "ok")
	}
	return id, err
}

func (s *InstrumentedStateStore) Load(id domain.StateID, stage string, allowMissing bool) (domain.AuthState, error) {
	state, err := s.inner.Load(id, stage, allowMissing)
	switch {
	case err == nil && state == nil:
		// allowMissing swallowed an unknown ID.
		s.metrics.RecordStateOp("load", "miss")
	case err == nil:
		s.metrics.RecordStateOp("load", "ok")
	case errors.Is(err, &domain.AppError{Code: domain.ErrCodeStateLost}):
		s.metrics.RecordStateOp("load", "miss")
	case errors.Is(err, &domain.AppError{Code: domain.ErrCodeStageMismatch}):
		s.metrics.RecordStateOp("load", "stage_mismatch")
	default:
		s.metrics.RecordStateOp("load", "error")
	}
	return state, err
}

func (s *InstrumentedStateStore) Delete(id domain.StateID) error {
	err := s.inner.Delete(id)
	if err != nil {
		s.metrics.RecordStateOp("delete", "error")
	} else {
		s.metrics.RecordStateOp("delete", "ok")
	}
	return err
}

var _ ports.StateStore = (*InstrumentedStateStore)(nil)
