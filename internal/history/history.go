// Package history provides the SQLite-backed append-only version log.
// Snapshots are keyed by the path a document had at save time; normal
// operation never mutates or deletes them.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aldwin/othala/internal/apperr"
	"github.com/aldwin/othala/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS versions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	path       TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_versions_path ON versions(path, id DESC);
`

// DefaultLimit caps ListRecent when the caller passes a non-positive limit.
const DefaultLimit = 20

// Store wraps a sql.DB with version-log operations.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Append durably records a snapshot of body at path and returns its id.
// The snapshot is visible to ListRecent calls issued after Append returns.
func (s *Store) Append(path string, body []byte) (int64, error) {
	res, err := s.conn.Exec(
		`INSERT INTO versions (path, body, created_at) VALUES (?, ?, ?)`,
		path, string(body), time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("history: append %s: %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: last insert id: %w", err)
	}
	return id, nil
}

// ListRecent returns up to limit snapshots for the exact path, newest
// first. A path that was never saved yields an empty result.
func (s *Store) ListRecent(path string, limit int) ([]models.Version, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.conn.Query(
		`SELECT id, path, body, created_at FROM versions WHERE path = ? ORDER BY id DESC LIMIT ?`,
		path, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: list %s: %w", path, err)
	}
	defer rows.Close()

	out := []models.Version{}
	for rows.Next() {
		var v models.Version
		if err := rows.Scan(&v.ID, &v.Path, &v.Body, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Get returns a single snapshot by id.
func (s *Store) Get(id int64) (*models.Version, error) {
	var v models.Version
	err := s.conn.QueryRow(
		`SELECT id, path, body, created_at FROM versions WHERE id = ?`, id,
	).Scan(&v.ID, &v.Path, &v.Body, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("history: version %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("history: get %d: %w", id, err)
	}
	return &v, nil
}
