package state

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/lib/pq"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// PostgresStateStore persists flow states in PostgreSQL so clustered
// deployments share one store. States are stored as JSON with their stage
// tag and expiry; expired rows are reaped opportunistically on Save.
type PostgresStateStore struct {
	db  *sql.DB
	ttl time.Duration
}

const createStateTable = `
CREATE TABLE IF NOT EXISTS flow_state (
	id     TEXT PRIMARY KEY,
	stage  TEXT NOT NULL,
	state  JSONB NOT NULL,
	expiry TIMESTAMPTZ NOT NULL
)`

// NewPostgresStateStore opens a connection with the given DSN and ensures
// the backing table exists. A non-positive ttl falls back to DefaultTTL.
func NewPostgresStateStore(dsn string, ttl time.Duration) (*PostgresStateStore, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, domain.CollaboratorError("postgres", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, domain.CollaboratorError("postgres", err)
	}
	if _, err := db.Exec(createStateTable); err != nil {
		db.Close()
		return nil, domain.CollaboratorError("postgres", err)
	}
	return &PostgresStateStore{db: db, ttl: ttl}, nil
}

// Save writes the state under a fresh random ID.
func (s *PostgresStateStore) Save(state domain.AuthState, stage string, addIDToState bool) (domain.StateID, error) {
	id := domain.NewStateID()

	saved := state.Copy()
	saved[domain.StateKeyStage] = stage
	if addIDToState {
		saved[domain.StateKeyStateID] = string(id)
		state[domain.StateKeyStateID] = string(id)
	}

	encoded, err := json.Marshal(saved)
	if err != nil {
		return "", domain.CollaboratorError("postgres", err)
	}

	// Reap a batch of expired rows while we are here. Failure is harmless;
	// the rows stay until a later pass.
	_, _ = s.db.Exec(`DELETE FROM flow_state WHERE expiry < now()`)

	_, err = s.db.Exec(
		`INSERT INTO flow_state (id, stage, state, expiry) VALUES ($1, $2, $3, $4)`,
		string(id), stage, encoded, time.Now().Add(s.ttl),
	)
	if err != nil {
		return "", domain.CollaboratorError("postgres", err)
	}
	return id, nil
}

// Load retrieves a state, enforcing the stage tag. Expired rows count as
// missing.
func (s *PostgresStateStore) Load(id domain.StateID, stage string, allowMissing bool) (domain.AuthState, error) {
	var (
		storedStage string
		encoded     []byte
	)
	err := s.db.QueryRow(
		`SELECT stage, state FROM flow_state WHERE id = $1 AND expiry >= now()`,
		string(id),
	).Scan(&storedStage, &encoded)
	if err == sql.ErrNoRows {
		if allowMissing {
			return nil, nil
		}
		return nil, domain.StateLostError(id)
	}
	if err != nil {
		return nil, domain.CollaboratorError("postgres", err)
	}
	if storedStage != stage {
		return nil, domain.StageMismatchError(id, stage, storedStage)
	}

	var state domain.AuthState
	if err := json.Unmarshal(encoded, &state); err != nil {
		return nil, domain.CollaboratorError("postgres", err)
	}
	return state, nil
}

// Delete removes a state. Deleting an unknown ID succeeds.
func (s *PostgresStateStore) Delete(id domain.StateID) error {
	if _, err := s.db.Exec(`DELETE FROM flow_state WHERE id = $1`, string(id)); err != nil {
		return domain.CollaboratorError("postgres", err)
	}
	return nil
}

// Close releases the database connection.
func (s *PostgresStateStore) Close() error {
	return s.db.Close()
}

var _ ports.StateStore = (*PostgresStateStore)(nil)
