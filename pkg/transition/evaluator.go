// Package transition resolves tile clicks into transition outcomes by
// reconciling persisted scenes, override behaviors, choice lists and the
// compiled catalog.
package transition

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jwebster45206/scene-engine/pkg/catalog"
	"github.com/jwebster45206/scene-engine/pkg/scene"
	"github.com/jwebster45206/scene-engine/pkg/storage"
)

const tracerName = "github.com/jwebster45206/scene-engine/pkg/transition"

// Source names the rule source that produced a result.
type Source string

const (
	SourceCatalog     Source = "catalog"
	SourceAutoAdvance Source = "auto_advance"
	SourceOverride    Source = "override"
	SourceChoices     Source = "choices"
	SourceHeuristic   Source = "heuristic"
	SourceRecovered   Source = "recovered"
)

// heuristic resolves a click on a scene that has no choices.
type heuristic func(s *scene.Scene, tileID string) scene.TransitionResult

// Every background currently defers to the scene's own choice rules. They
// stay separate entries so a background can grow its own logic.
var heuristics = map[scene.BackgroundType]heuristic{
	scene.BackgroundMatrixAnimated: scene.EvaluateChoices,
	scene.BackgroundMatrixStatic:   scene.EvaluateChoices,
	scene.BackgroundVault:          scene.EvaluateChoices,
	scene.BackgroundDungeon:        scene.EvaluateChoices,
	scene.BackgroundHandDrawn:      scene.EvaluateChoices,
	scene.BackgroundStaticGrid:     scene.EvaluateChoices,
}

// Evaluator turns (scene, tile, action) into a TransitionResult. It is safe
// for concurrent use.
type Evaluator struct {
	store     storage.SceneStore
	catalog   *catalog.Catalog
	registry  *Registry
	validator *scene.Validator
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewEvaluator wires an evaluator. A nil store resolves everything from the
// catalog; a nil catalog uses catalog.Default; a nil registry means no
// overrides.
func NewEvaluator(store storage.SceneStore, cat *catalog.Catalog, registry *Registry, logger *slog.Logger) *Evaluator {
	if cat == nil {
		cat = catalog.Default()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		store:     store,
		catalog:   cat,
		registry:  registry,
		validator: scene.NewValidator(logger),
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}
}

// Evaluate resolves a click. It never fails: missing data, store outages and
// panics in override logic all degrade to the catalog fallback.
func (e *Evaluator) Evaluate(ctx context.Context, sceneID, subsceneID int, tileID, action string) (result scene.TransitionResult) {
	key := scene.Key{SceneID: sceneID, SubsceneID: subsceneID}
	log := e.logger.With("scene", key.String(), "tile_id", tileID, "action", action)

	ctx, span := e.tracer.Start(ctx, "transition.Evaluate", trace.WithAttributes(
		attribute.String("scene.key", key.String()),
		attribute.String("scene.tile_id", tileID),
		attribute.String("scene.action", action),
	))
	defer span.End()

	source := SourceCatalog
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("transition panic: %v", r)
			log.Error("Recovered from panic during transition evaluation", "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "recovered panic")
			source = SourceRecovered
			result = e.catalog.Fallback(sceneID, subsceneID, tileID)
		}
		span.SetAttributes(
			attribute.String("transition.source", string(source)),
			attribute.String("transition.target", result.Target().String()),
		)
		log.Debug("Transition resolved", "source", source, "target", result.Target().String(), "two_phase", result.IsTwoPhase())
	}()

	s := e.findScene(ctx, log, sceneID, subsceneID)
	if s == nil {
		if !e.catalog.Has(key) {
			log.Debug("Unknown scene, nothing to transition to")
		}
		return e.catalog.Fallback(sceneID, subsceneID, tileID)
	}

	if aa, ok := s.AutoAdvance(); ok {
		source = SourceAutoAdvance
		return scene.Direct(aa.NextScene, "", scene.Effects{scene.EffectDelay: aa.DelayMs}, scene.EchoAutoAdvanceTriggered)
	}

	if b, ok := e.registry.Lookup(key); ok {
		source = SourceOverride
		return b.Handle(ctx, tileID, action, s)
	}

	if len(s.Choices) > 0 {
		source = SourceChoices
		return scene.EvaluateChoices(s, tileID)
	}

	if h, ok := heuristics[s.BackgroundType()]; ok {
		source = SourceHeuristic
		return h(s, tileID)
	}

	log.Debug("No heuristic for background type", "background_type", s.BackgroundType())
	return e.catalog.Fallback(sceneID, subsceneID, tileID)
}

// findScene loads and validates the persisted scene. Store failures are
// logged and read as "not found".
func (e *Evaluator) findScene(ctx context.Context, log *slog.Logger, sceneID, subsceneID int) *scene.Scene {
	if e.store == nil {
		return nil
	}
	s, err := e.store.FindScene(ctx, sceneID, subsceneID)
	if err != nil {
		log.Warn("Scene store unavailable, using catalog", "error", fmt.Errorf("%w: %w", storage.ErrPersistenceUnavailable, err))
		trace.SpanFromContext(ctx).AddEvent("persistence_unavailable")
		return nil
	}
	if s == nil {
		return nil
	}
	e.validator.Validate(s)
	return s
}
