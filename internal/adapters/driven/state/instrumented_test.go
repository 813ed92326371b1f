//go:build unit

package state

import (
	"testing"
	"time"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// countingRecorder tallies state operations by op/result pair.
type countingRecorder struct {
	ops map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{ops: map[string]int{}}
}

func (r *countingRecorder) RecordAuthnFlow(idpEntityID, outcome string) {}
func (r *countingRecorder) RecordFilterRun(name, outcome string)       {}
func (r *countingRecorder) RecordLogoutAssociation(status string)      {}

func (r *countingRecorder) RecordStateOp(op, result string) {
	r.ops[op+"/"+result]++
}

// TestInstrumentedStateStore_RecordsOutcomes verifies each operation records
// the matching op/result pair while behavior passes through unchanged.
func TestInstrumentedStateStore_RecordsOutcomes(t *testing.T) {
	recorder := newCountingRecorder()
	store := NewInstrumentedStateStore(NewMemoryStateStore(time.Minute), recorder)

	id, err := store.Save(domain.AuthState{"uid": "alice"}, "test:stage", false)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := store.Load(id, "test:stage", false); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := store.Load(id, "other:stage", false); err == nil {
		t.Fatal("stage mismatch must fail")
	}
	if _, err := store.Load(domain.NewStateID(), "test:stage", false); err == nil {
		t.Fatal("unknown ID must fail")
	}
	if got, err := store.Load(domain.NewStateID(), "test:stage", true); err != nil || got != nil {
		t.Fatalf("allowMissing load = %v, %v", got, err)
	}
	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	want := map[string]int{
		"save/ok":             1,
		"load/ok":             1,
		"load/stage_mismatch": 1,
		"load/miss":           2,
		"delete/ok":           1,
	}
	for key, count := range want {
		if recorder.ops[key] != count {
			t.Errorf("ops[%s] = %d, want %d", key, recorder.ops[key], count)
		}
	}
	if len(recorder.ops) != len(want) {
		t.Errorf("recorded ops = %v", recorder.ops)
	}
}

// TestNewInstrumentedStateStore_NilRecorder verifies a nil recorder leaves
// the inner store unwrapped.
func TestNewInstrumentedStateStore_NilRecorder(t *testing.T) {
	inner := NewMemoryStateStore(time.Minute)
	var got ports.StateStore = NewInstrumentedStateStore(inner, nil)
	if got != ports.StateStore(inner) {
		t.Error("nil recorder must return the inner store unchanged")
	}
}
