// Package state records playback and render sessions in SQLite.
// Each time the engine plays a project live or renders it to disk, a
// session row captures what ran, for how long, and whether it succeeded.
package state

import "time"

// SessionKind distinguishes live playback from offline rendering.
type SessionKind string

const (
	SessionKindPlay   SessionKind = "play"
	SessionKindRender SessionKind = "render"
)

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
)

// Session is one playback or render run of a project.
type Session struct {
	ID          string
	Kind        SessionKind
	ProjectPath string
	SampleRate  int
	Frames      int64
	Status      SessionStatus
	Error       string
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// Duration returns the session's wall-clock length, or the time elapsed
// so far when the session is still running.
func (s *Session) Duration() time.Duration {
	if s.FinishedAt != nil {
		return s.FinishedAt.Sub(s.StartedAt)
	}
	return time.Since(s.StartedAt)
}

// Store persists sessions.
type Store interface {
	CreateSession(kind SessionKind, projectPath string, sampleRate int) (*Session, error)
	FinishSession(id string, status SessionStatus, frames int64, errMsg string) error
	GetSession(id string) (*Session, error)
	ListSessions(limit int) ([]*Session, error)
	Close() error
}
