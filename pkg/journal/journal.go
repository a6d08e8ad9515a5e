// Package journal records every tile click into a per-session log and
// derives insights from it. The persisted store is the source of truth; the
// in-process mirror only serves ListActiveSessions and saves round trips.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jwebster45206/scene-engine/internal/logger"
	"github.com/jwebster45206/scene-engine/pkg/session"
	"github.com/jwebster45206/scene-engine/pkg/storage"
)

const tracerName = "github.com/jwebster45206/scene-engine/pkg/journal"

// ErrEmptySessionID is returned when an operation is called without a session id.
var ErrEmptySessionID = errors.New("session id is required")

var errNoStore = fmt.Errorf("%w: no session store configured", storage.ErrPersistenceUnavailable)

// Journal is safe for concurrent use. Appends to one session from
// concurrent callers are not serialized; the store decides their order.
type Journal struct {
	store  storage.SessionStore
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time

	mu     sync.RWMutex
	mirror map[string]*session.Session
}

// New creates a journal over store. A nil store is allowed: every operation
// then fails with storage.ErrPersistenceUnavailable.
func New(store storage.SessionStore, log *slog.Logger) *Journal {
	if log == nil {
		log = slog.Default()
	}
	return &Journal{
		store:  store,
		logger: log,
		tracer: otel.Tracer(tracerName),
		now:    func() time.Time { return time.Now().UTC() },
		mirror: make(map[string]*session.Session),
	}
}

// Now returns the journal clock's current time.
func (j *Journal) Now() time.Time {
	return j.now()
}

// GetOrCreateSession returns the session with the given id, creating the
// persisted record on first use. The first call per process loads the
// session and its log into the mirror. A non-empty ownerID is recorded on a
// session that has no owner yet; the first owner recorded keeps the session.
func (j *Journal) GetOrCreateSession(ctx context.Context, id, ownerID string) (*session.Session, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}
	if j.store == nil {
		return nil, errNoStore
	}

	j.mu.RLock()
	cached, ok := j.mirror[id]
	if ok {
		cached = cached.Clone()
	}
	j.mu.RUnlock()
	if ok {
		return j.claimOwner(ctx, cached, ownerID), nil
	}

	ctx, span := j.tracer.Start(ctx, "journal.GetOrCreateSession", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	s, err := j.store.FindSessionWithLog(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load session")
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	if s == nil {
		s = session.NewSession(id, ownerID, j.now())
		if err := j.store.CreateSession(ctx, s); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "create session")
			return nil, fmt.Errorf("failed to create session %s: %w", id, err)
		}
		j.logger.Info("Session created", "session_id", id, "owner_id", ownerID)
	}

	j.mu.Lock()
	if existing, raced := j.mirror[id]; raced {
		s = existing
	} else {
		j.mirror[id] = s
	}
	out := s.Clone()
	j.mu.Unlock()

	return j.claimOwner(ctx, out, ownerID), nil
}

// claimOwner records ownerID on s when s has no owner, keeping the mirror in
// step with the store. Failures leave s unowned and are only logged.
func (j *Journal) claimOwner(ctx context.Context, s *session.Session, ownerID string) *session.Session {
	if ownerID == "" || s.OwnerID != "" {
		return s
	}
	log := logger.WithSession(j.logger, s.ID)

	claimed, err := j.store.ClaimSessionOwner(ctx, s.ID, ownerID)
	if err != nil {
		log.Warn("Failed to record session owner", "owner_id", ownerID, "error", err)
		return s
	}

	owner := ownerID
	if !claimed {
		// Another process got there first.
		persisted, err := j.store.FindSession(ctx, s.ID)
		if err != nil || persisted == nil {
			log.Warn("Failed to reload session owner", "error", err)
			return s
		}
		owner = persisted.OwnerID
	}

	j.mu.Lock()
	if m, ok := j.mirror[s.ID]; ok {
		m.OwnerID = owner
	}
	j.mu.Unlock()

	s.OwnerID = owner
	if claimed {
		log.Info("Session owner recorded", "owner_id", owner)
	}
	return s
}

// LogInteraction appends entry to the session's log, creating the session
// if needed. Failures are logged and swallowed; a click is never failed
// because it could not be journaled.
func (j *Journal) LogInteraction(ctx context.Context, id string, entry session.InteractionLogEntry) {
	log := logger.WithSession(j.logger, id).With("scene", entry.SceneKey().String(), "tile_id", entry.GridTile)

	ctx, span := j.tracer.Start(ctx, "journal.LogInteraction", trace.WithAttributes(
		attribute.String("session.id", id),
		attribute.String("scene.key", entry.SceneKey().String()),
	))
	defer span.End()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = j.now()
	}

	if _, err := j.GetOrCreateSession(ctx, id, ""); err != nil {
		span.RecordError(err)
		log.Warn("Interaction not journaled, session unavailable", "error", err)
		return
	}

	if err := j.store.AppendLogEntry(ctx, id, entry); err != nil {
		span.RecordError(err)
		log.Warn("Interaction not journaled, append failed", "error", err)
		return
	}

	j.mu.Lock()
	if s, ok := j.mirror[id]; ok {
		s.Log = append(s.Log, entry.Clone())
		if entry.Timestamp.After(s.UpdatedAt) {
			s.UpdatedAt = entry.Timestamp
		}
	}
	j.mu.Unlock()

	log.Debug("Interaction journaled", "zoom_target", entry.ZoomTarget)
}

// GetInsights summarizes the persisted log. It reads the store on every call.
func (j *Journal) GetInsights(ctx context.Context, id string) (session.Insights, error) {
	if id == "" {
		return session.Insights{}, ErrEmptySessionID
	}
	if j.store == nil {
		return session.Insights{}, errNoStore
	}

	ctx, span := j.tracer.Start(ctx, "journal.GetInsights", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	s, err := j.store.FindSessionWithLog(ctx, id)
	if err != nil {
		span.RecordError(err)
		return session.Insights{}, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	if s == nil {
		return session.Insights{}, fmt.Errorf("%w: %s", storage.ErrSessionNotFound, id)
	}
	return session.Summarize(id, s.Log), nil
}

// ListActiveSessions returns the active sessions this process has seen,
// most recently updated first, without their logs.
func (j *Journal) ListActiveSessions() []*session.Session {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]*session.Session, 0, len(j.mirror))
	for _, s := range j.mirror {
		if !s.Active {
			continue
		}
		c := *s
		c.Log = nil
		out = append(out, &c)
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].UpdatedAt.Equal(out[b].UpdatedAt) {
			return out[a].UpdatedAt.After(out[b].UpdatedAt)
		}
		return out[a].ID < out[b].ID
	})
	return out
}

// EndSession marks the session inactive so the retention sweep can remove it.
func (j *Journal) EndSession(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptySessionID
	}
	if j.store == nil {
		return errNoStore
	}
	if err := j.store.MarkSessionInactive(ctx, id); err != nil {
		return fmt.Errorf("failed to end session %s: %w", id, err)
	}

	j.mu.Lock()
	if s, ok := j.mirror[id]; ok {
		s.Active = false
	}
	j.mu.Unlock()

	logger.WithSession(j.logger, id).Info("Session ended")
	return nil
}

// CleanupOldSessions deletes inactive sessions not updated in maxAgeDays and
// returns how many persisted sessions were removed.
func (j *Journal) CleanupOldSessions(ctx context.Context, maxAgeDays int) (int, error) {
	if maxAgeDays < 0 {
		return 0, fmt.Errorf("max age must not be negative, got %d days", maxAgeDays)
	}
	if j.store == nil {
		return 0, errNoStore
	}

	ctx, span := j.tracer.Start(ctx, "journal.CleanupOldSessions", trace.WithAttributes(attribute.Int("retention.days", maxAgeDays)))
	defer span.End()

	cutoff := j.now().AddDate(0, 0, -maxAgeDays)
	deleted, err := j.store.DeleteInactiveSessionsOlderThan(ctx, cutoff)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to delete sessions older than %s: %w", cutoff.Format(time.RFC3339), err)
	}

	j.mu.Lock()
	for id, s := range j.mirror {
		if !s.Active && s.UpdatedAt.Before(cutoff) {
			delete(j.mirror, id)
		}
	}
	j.mu.Unlock()

	span.SetAttributes(attribute.Int("retention.deleted", deleted))
	j.logger.Info("Old sessions cleaned up", "deleted", deleted, "cutoff", cutoff)
	return deleted, nil
}
