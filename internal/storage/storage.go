package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

var (
	// ErrSessionNotFound is returned when no session is stored under an ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrLocked is returned when another owner holds a session's turn lock.
	ErrLocked = errors.New("session is locked")
)

// Session is a persisted game: its identity plus the full world snapshot.
type Session struct {
	ID        string          `json:"id"`
	ModelName string          `json:"model_name,omitempty"`
	Snapshot  *world.Snapshot `json:"snapshot"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Store defines session persistence and the per-session turn lock.
type Store interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Session operations. LoadSession returns ErrSessionNotFound for
	// unknown or expired sessions.
	SaveSession(ctx context.Context, s *Session) error
	LoadSession(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error

	// Turn lock. Acquire returns ErrLocked if another owner holds the lock;
	// Release only removes a lock held by owner.
	AcquireTurnLock(ctx context.Context, sessionID, owner string, ttl time.Duration) error
	ReleaseTurnLock(ctx context.Context, sessionID, owner string) error
}

func sessionKey(id string) string {
	return "session:" + id
}

func lockKey(id string) string {
	return "session-lock:" + id
}
