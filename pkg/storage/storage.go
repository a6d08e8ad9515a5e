package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jwebster45206/scene-engine/pkg/scene"
	"github.com/jwebster45206/scene-engine/pkg/session"
)

var (
	// ErrPersistenceUnavailable wraps any failure to reach or use the backing store.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")

	// ErrSessionNotFound is returned when appending to a session that does not exist.
	ErrSessionNotFound = errors.New("session not found")
)

// SceneFilter narrows ListScenes. Zero-valued fields match everything.
type SceneFilter struct {
	SceneID        int
	BackgroundType scene.BackgroundType
}

// Matches reports whether s passes the filter.
func (f *SceneFilter) Matches(s *scene.Scene) bool {
	if f == nil {
		return true
	}
	if f.SceneID != 0 && s.SceneID != f.SceneID {
		return false
	}
	if f.BackgroundType != "" && s.BackgroundType() != f.BackgroundType {
		return false
	}
	return true
}

// SceneStore persists scene records keyed by (scene_id, subscene_id).
type SceneStore interface {
	// FindScene returns nil, nil when the scene does not exist
	FindScene(ctx context.Context, sceneID, subsceneID int) (*scene.Scene, error)
	UpsertScene(ctx context.Context, s *scene.Scene) error
	// ListScenes returns scenes ordered by scene_id then subscene_id
	ListScenes(ctx context.Context, filter *SceneFilter) ([]*scene.Scene, error)
}

// SessionStore persists sessions and their append-only interaction logs.
type SessionStore interface {
	// FindSession returns the session without its log, or nil, nil when missing
	FindSession(ctx context.Context, id string) (*session.Session, error)
	// CreateSession inserts the session; an existing session with the same id is left untouched
	CreateSession(ctx context.Context, s *session.Session) error
	// AppendLogEntry appends to the session's log and bumps its UpdatedAt
	AppendLogEntry(ctx context.Context, sessionID string, entry session.InteractionLogEntry) error
	// FindSessionWithLog returns the session with its full log, or nil, nil when missing
	FindSessionWithLog(ctx context.Context, id string) (*session.Session, error)
	// ClaimSessionOwner sets ownerID on a session that has no owner yet and
	// reports whether it did. An existing owner is never replaced.
	ClaimSessionOwner(ctx context.Context, id, ownerID string) (bool, error)
	MarkSessionInactive(ctx context.Context, id string) error
	// DeleteInactiveSessionsOlderThan removes inactive sessions last updated before cutoff
	DeleteInactiveSessionsOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// Storage defines a unified interface for all storage operations
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	SceneStore
	SessionStore
}
