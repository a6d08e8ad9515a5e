// Package engine is the entry point adapters call. It wires the transition
// evaluator, the session journal, the catalog and the store together.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jwebster45206/scene-engine/pkg/catalog"
	"github.com/jwebster45206/scene-engine/pkg/grid"
	"github.com/jwebster45206/scene-engine/pkg/journal"
	"github.com/jwebster45206/scene-engine/pkg/scene"
	"github.com/jwebster45206/scene-engine/pkg/session"
	"github.com/jwebster45206/scene-engine/pkg/storage"
	"github.com/jwebster45206/scene-engine/pkg/transition"
)

// ErrSceneNotFound is returned when neither the store nor the catalog knows a scene.
var ErrSceneNotFound = errors.New("scene not found")

// Publisher receives engine events. Publishing is best-effort: errors are
// logged and never change the outcome of the call that produced the event.
type Publisher interface {
	PublishTransitionResolved(ctx context.Context, sessionID string, entry session.InteractionLogEntry) error
	PublishSessionEnded(ctx context.Context, sessionID string) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithCatalog replaces the compiled-in catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithRegistry sets the override behaviors. The default is transition.DefaultRegistry.
func WithRegistry(r *transition.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithPublisher sets where resolved clicks are announced.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// Engine resolves clicks and records sessions.
type Engine struct {
	store     storage.Storage
	catalog   *catalog.Catalog
	registry  *transition.Registry
	publisher Publisher
	evaluator *transition.Evaluator
	journal   *journal.Journal
	validator *scene.Validator
	logger    *slog.Logger
}

// New builds an engine over store.
func New(store storage.Storage, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		store:  store,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		e.catalog = catalog.Default()
	}
	if e.registry == nil {
		e.registry = transition.DefaultRegistry()
	}
	e.evaluator = transition.NewEvaluator(store, e.catalog, e.registry, logger)
	e.journal = journal.New(store, logger)
	e.validator = scene.NewValidator(logger)
	return e
}

// Catalog returns the catalog the engine falls back to.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// EvaluateTransition resolves a click without recording it. It never fails.
func (e *Engine) EvaluateTransition(ctx context.Context, sceneID, subsceneID int, tileID, action string) scene.TransitionResult {
	return e.evaluator.Evaluate(ctx, sceneID, subsceneID, tileID, action)
}

// Click is one tile interaction by a player.
type Click struct {
	SessionID  string `json:"session_id"`
	SceneID    int    `json:"scene_id"`
	SubsceneID int    `json:"subscene_id"`
	TileID     string `json:"tile_id"`
	Action     string `json:"action"`
}

// HandleTileClick resolves the click, journals it when a session is given
// and announces it. Only a malformed tile id is an error; journaling and
// publishing failures are logged.
func (e *Engine) HandleTileClick(ctx context.Context, c Click) (scene.TransitionResult, error) {
	if _, err := grid.FromTileID(c.TileID); err != nil {
		e.logger.Error("Rejected click with malformed tile id",
			"error", err,
			"session_id", c.SessionID,
			"scene", scene.Key{SceneID: c.SceneID, SubsceneID: c.SubsceneID}.String(),
		)
		return scene.TransitionResult{}, err
	}

	result := e.evaluator.Evaluate(ctx, c.SceneID, c.SubsceneID, c.TileID, c.Action)
	if c.SessionID == "" {
		return result, nil
	}

	from := scene.Key{SceneID: c.SceneID, SubsceneID: c.SubsceneID}
	entry := session.EntryFromResult(from, c.TileID, result, e.journal.Now())
	e.journal.LogInteraction(ctx, c.SessionID, entry)

	if e.publisher != nil {
		if err := e.publisher.PublishTransitionResolved(ctx, c.SessionID, entry); err != nil {
			e.logger.Warn("Failed to publish transition", "error", err, "session_id", c.SessionID)
		}
	}
	return result, nil
}

// GetSceneData returns the persisted scene, or the catalog copy when the
// store does not have it or cannot be reached.
func (e *Engine) GetSceneData(ctx context.Context, sceneID, subsceneID int) (*scene.Scene, error) {
	key := scene.Key{SceneID: sceneID, SubsceneID: subsceneID}
	if e.store != nil {
		s, err := e.store.FindScene(ctx, sceneID, subsceneID)
		if err != nil {
			e.logger.Warn("Scene store unavailable, using catalog", "error", err, "scene", key.String())
		} else if s != nil {
			return s, nil
		}
	}
	if s := e.catalog.Get(sceneID, subsceneID); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSceneNotFound, key)
}

// ListAllScenes returns every known scene ordered by key. Persisted scenes
// shadow catalog scenes with the same identity.
func (e *Engine) ListAllScenes(ctx context.Context) ([]*scene.Scene, error) {
	merged := make(map[scene.Key]*scene.Scene, e.catalog.Len())
	for _, s := range e.catalog.All() {
		merged[s.Key()] = s
	}

	if e.store != nil {
		persisted, err := e.store.ListScenes(ctx, nil)
		if err != nil {
			e.logger.Warn("Scene store unavailable, listing catalog only", "error", err)
		}
		for _, s := range persisted {
			merged[s.Key()] = s
		}
	}

	out := make([]*scene.Scene, 0, len(merged))
	for _, s := range merged {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out, nil
}

// HasAutoAdvance reports whether the scene declares an auto-advance delay.
func (e *Engine) HasAutoAdvance(ctx context.Context, sceneID, subsceneID int) bool {
	s, err := e.GetSceneData(ctx, sceneID, subsceneID)
	if err != nil {
		return false
	}
	_, ok := s.Effects.AutoAdvanceAfterMs()
	return ok
}

// GetAutoAdvanceConfig returns the scene's auto-advance delay and target.
func (e *Engine) GetAutoAdvanceConfig(ctx context.Context, sceneID, subsceneID int) (scene.AutoAdvance, bool) {
	s, err := e.GetSceneData(ctx, sceneID, subsceneID)
	if err != nil {
		return scene.AutoAdvance{}, false
	}
	return s.AutoAdvance()
}

// StartSession returns the session, creating it if this is its first use.
func (e *Engine) StartSession(ctx context.Context, sessionID, ownerID string) (*session.Session, error) {
	return e.journal.GetOrCreateSession(ctx, sessionID, ownerID)
}

// LogTileInteraction records entry against the session. It never fails.
func (e *Engine) LogTileInteraction(ctx context.Context, sessionID string, entry session.InteractionLogEntry) {
	e.journal.LogInteraction(ctx, sessionID, entry)
}

// GetSessionInsights summarizes a session's persisted log.
func (e *Engine) GetSessionInsights(ctx context.Context, sessionID string) (session.Insights, error) {
	return e.journal.GetInsights(ctx, sessionID)
}

// ListActiveSessions lists the active sessions seen by this process.
func (e *Engine) ListActiveSessions() []*session.Session {
	return e.journal.ListActiveSessions()
}

// EndSession marks the session inactive.
func (e *Engine) EndSession(ctx context.Context, sessionID string) error {
	if err := e.journal.EndSession(ctx, sessionID); err != nil {
		return err
	}
	if e.publisher != nil {
		if err := e.publisher.PublishSessionEnded(ctx, sessionID); err != nil {
			e.logger.Warn("Failed to publish session end", "error", err, "session_id", sessionID)
		}
	}
	return nil
}

// CleanupOldSessions removes inactive sessions idle for more than maxAgeDays.
func (e *Engine) CleanupOldSessions(ctx context.Context, maxAgeDays int) (int, error) {
	return e.journal.CleanupOldSessions(ctx, maxAgeDays)
}

// SeedScenes writes every catalog scene to the store.
func (e *Engine) SeedScenes(ctx context.Context) (int, error) {
	if e.store == nil {
		return 0, fmt.Errorf("%w: no store configured", storage.ErrPersistenceUnavailable)
	}
	n, err := e.catalog.Seed(ctx, e.store)
	if err != nil {
		return n, err
	}
	e.logger.Info("Scenes seeded", "count", n)
	return n, nil
}

// ValidateAll validates every scene ListAllScenes returns.
func (e *Engine) ValidateAll(ctx context.Context) ([]scene.Report, error) {
	scenes, err := e.ListAllScenes(ctx)
	if err != nil {
		return nil, err
	}
	reports := make([]scene.Report, 0, len(scenes))
	for _, s := range scenes {
		reports = append(reports, e.validator.Validate(s))
	}
	return reports, nil
}
