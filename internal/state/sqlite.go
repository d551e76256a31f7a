package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite session store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
			db.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// CreateSession inserts a new running session.
func (s *SQLiteStore) CreateSession(kind SessionKind, projectPath string, sampleRate int) (*Session, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	sess := &Session{
		ID:          generateID(),
		Kind:        kind,
		ProjectPath: projectPath,
		SampleRate:  sampleRate,
		Status:      SessionStatusRunning,
		StartedAt:   time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO sessions (id, kind, project_path, sample_rate, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Kind, sess.ProjectPath, sess.SampleRate, sess.Status, sess.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sess, nil
}

// FinishSession marks a session as finished with the given status and
// the number of frames produced.
func (s *SQLiteStore) FinishSession(id string, status SessionStatus, frames int64, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	var errorPtr *string
	if errMsg != "" {
		errorPtr = &errMsg
	}

	result, err := s.db.Exec(
		`UPDATE sessions SET status = ?, frames = ?, finished_at = ?, error = ? WHERE id = ?`,
		status, frames, now, errorPtr, id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish session: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	return nil
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(id string) (*Session, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	sess := &Session{}
	var finishedAt sql.NullTime
	var errMsg sql.NullString

	err := s.db.QueryRow(
		`SELECT id, kind, project_path, sample_rate, frames, status, started_at, finished_at, error
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.Kind, &sess.ProjectPath, &sess.SampleRate, &sess.Frames, &sess.Status, &sess.StartedAt, &finishedAt, &errMsg)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if finishedAt.Valid {
		sess.FinishedAt = &finishedAt.Time
	}
	if errMsg.Valid {
		sess.Error = errMsg.String
	}

	return sess, nil
}

// ListSessions retrieves the most recent sessions, newest first.
// A limit of 0 or less returns all sessions.
func (s *SQLiteStore) ListSessions(limit int) ([]*Session, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT id, kind, project_path, sample_rate, frames, status, started_at, finished_at, error
	          FROM sessions ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		var finishedAt sql.NullTime
		var errMsg sql.NullString

		err := rows.Scan(&sess.ID, &sess.Kind, &sess.ProjectPath, &sess.SampleRate, &sess.Frames, &sess.Status, &sess.StartedAt, &finishedAt, &errMsg)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		if finishedAt.Valid {
			sess.FinishedAt = &finishedAt.Time
		}
		if errMsg.Valid {
			sess.Error = errMsg.String
		}
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
