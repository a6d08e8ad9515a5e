package session

import (
	"time"

	"github.com/jwebster45206/scene-engine/pkg/scene"
)

// Session is one player's run through the narrative.
type Session struct {
	ID        string                `json:"id"`
	OwnerID   string                `json:"owner_id,omitempty"`
	Active    bool                  `json:"active"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	Log       []InteractionLogEntry `json:"log,omitempty"`
}

// NewSession creates an active session stamped with now.
func NewSession(id, ownerID string, now time.Time) *Session {
	return &Session{
		ID:        id,
		OwnerID:   ownerID,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the session, including its log.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Log != nil {
		c.Log = make([]InteractionLogEntry, len(s.Log))
		for i, e := range s.Log {
			c.Log[i] = e.Clone()
		}
	}
	return &c
}

// InteractionLogEntry records one tile click and where it led.
type InteractionLogEntry struct {
	Scene      int                     `json:"scene"`
	Subscene   int                     `json:"subscene"`
	GridTile   string                  `json:"grid_tile"`
	ZoomTarget string                  `json:"zoom_target,omitempty"`
	NextScene  *scene.TransitionResult `json:"next_scene,omitempty"`
	Timestamp  time.Time               `json:"timestamp"`
}

// SceneKey returns the scene the click happened on.
func (e InteractionLogEntry) SceneKey() scene.Key {
	return scene.Key{SceneID: e.Scene, SubsceneID: e.Subscene}
}

// Clone copies the entry and its transition snapshot.
func (e InteractionLogEntry) Clone() InteractionLogEntry {
	if e.NextScene != nil {
		snap := *e.NextScene
		e.NextScene = &snap
	}
	return e
}

// EntryFromResult builds a log entry for a click on tileID in from that
// resolved to r. No-op results carry no transition snapshot.
func EntryFromResult(from scene.Key, tileID string, r scene.TransitionResult, at time.Time) InteractionLogEntry {
	e := InteractionLogEntry{
		Scene:     from.SceneID,
		Subscene:  from.SubsceneID,
		GridTile:  tileID,
		Timestamp: at,
	}
	if r.IsTwoPhase() {
		e.ZoomTarget = r.ZoomTo
	}
	if !r.IsNoOp() {
		snap := r
		e.NextScene = &snap
	}
	return e
}
