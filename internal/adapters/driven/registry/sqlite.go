package registry

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// SQLiteRegistry persists associations in a SQLite database so they survive
// restarts of a single-instance deployment. The pure-Go driver keeps the
// build cgo-free.
type SQLiteRegistry struct {
	db *sql.DB
}

const createAssociationTable = `
CREATE TABLE IF NOT EXISTS association (
	id             TEXT PRIMARY KEY,
	sp_entity_id   TEXT NOT NULL,
	name_id        TEXT NOT NULL,
	name_id_format TEXT NOT NULL,
	session_index  TEXT NOT NULL,
	expires        INTEGER NOT NULL,
	logout_timeout INTEGER NOT NULL
)`

// NewSQLiteRegistry opens (creating if needed) the database at path and
// ensures the association table exists.
func NewSQLiteRegistry(path string) (*SQLiteRegistry, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, domain.CollaboratorError("association registry", err)
	}
	if _, err := db.Exec(createAssociationTable); err != nil {
		db.Close()
		return nil, domain.CollaboratorError("association registry", err)
	}
	return &SQLiteRegistry{db: db}, nil
}

// Associations returns all live associations, dropping expired rows.
func (r *SQLiteRegistry) Associations() (map[string]domain.Association, error) {
	now := time.Now().Unix()
	if _, err := r.db.Exec(`DELETE FROM association WHERE expires > 0 AND expires < ?`, now); err != nil {
		return nil, domain.CollaboratorError("association registry", err)
	}

	rows, err := r.db.Query(`SELECT id, sp_entity_id, name_id, name_id_format, session_index, expires, logout_timeout FROM association`)
	if err != nil {
		return nil, domain.CollaboratorError("association registry", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Association)
	for rows.Next() {
		var (
			assoc       domain.Association
			expires     int64
			timeoutSecs int64
		)
		if err := rows.Scan(&assoc.ID, &assoc.SPEntityID, &assoc.NameID, &assoc.NameIDFormat, &assoc.SessionIndex, &expires, &timeoutSecs); err != nil {
			return nil, domain.CollaboratorError("association registry", err)
		}
		if expires > 0 {
			assoc.Expires = time.Unix(expires, 0)
		}
		assoc.LogoutTimeout = time.Duration(timeoutSecs) * time.Second
		out[assoc.ID] = assoc
	}
	if err := rows.Err(); err != nil {
		return nil, domain.CollaboratorError("association registry", err)
	}
	return out, nil
}

// Add registers an association, replacing any existing row with the same ID.
func (r *SQLiteRegistry) Add(assoc domain.Association) error {
	var expires int64
	if !assoc.Expires.IsZero() {
		expires = assoc.Expires.Unix()
	}
	_, err := r.db.Exec(
		`INSERT OR REPLACE INTO association (id, sp_entity_id, name_id, name_id_format, session_index, expires, logout_timeout)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		assoc.ID, assoc.SPEntityID, assoc.NameID, assoc.NameIDFormat, assoc.SessionIndex,
		expires, int64(assoc.LogoutTimeout/time.Second),
	)
	if err != nil {
		return domain.CollaboratorError("association registry", err)
	}
	return nil
}

// Terminate removes an association. Unknown IDs are ignored.
func (r *SQLiteRegistry) Terminate(id string) error {
	if _, err := r.db.Exec(`DELETE FROM association WHERE id = ?`, id); err != nil {
		return domain.CollaboratorError("association registry", err)
	}
	return nil
}

// Close releases the database handle.
func (r *SQLiteRegistry) Close() error {
	return r.db.Close()
}

var _ ports.AssociationRegistry = (*SQLiteRegistry)(nil)
