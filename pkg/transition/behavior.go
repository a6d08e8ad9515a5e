package transition

import (
	"context"
	"sort"
	"sync"

	"github.com/jwebster45206/scene-engine/pkg/scene"
)

// Behavior is scene-specific click logic that replaces the generic choice
// evaluation. Whatever it returns is used verbatim.
type Behavior interface {
	Handle(ctx context.Context, tileID, action string, s *scene.Scene) scene.TransitionResult
}

// BehaviorFunc adapts a plain function to Behavior.
type BehaviorFunc func(ctx context.Context, tileID, action string, s *scene.Scene) scene.TransitionResult

func (f BehaviorFunc) Handle(ctx context.Context, tileID, action string, s *scene.Scene) scene.TransitionResult {
	return f(ctx, tileID, action, s)
}

// ChoiceBehavior evaluates the scene's choices in order.
type ChoiceBehavior struct{}

func (ChoiceBehavior) Handle(_ context.Context, tileID, _ string, s *scene.Scene) scene.TransitionResult {
	return scene.EvaluateChoices(s, tileID)
}

// TriggerTileBehavior zooms into a next_scenes trigger tile before moving
// to that exit. Clicks anywhere else are handed to Otherwise, or to
// ChoiceBehavior when Otherwise is nil.
type TriggerTileBehavior struct {
	Otherwise Behavior
}

func (b TriggerTileBehavior) Handle(ctx context.Context, tileID, action string, s *scene.Scene) scene.TransitionResult {
	for _, ns := range s.NextScenes {
		if ns.TriggerTile == "" || ns.TriggerTile != tileID {
			continue
		}
		next := scene.Direct(ns.Key(), ns.Label, nil, "")
		// Borrow message, effects and echo from the choice that leads to the
		// same exit so both rule sources tell the same story.
		for _, ch := range s.Choices {
			if ch.NextKey() == ns.Key() && ch.Condition.Matches(tileID) {
				next = scene.Direct(ns.Key(), ch.Label, ch.Effects.Clone(), ch.Echo)
				break
			}
		}
		return scene.ZoomThen(tileID, ns.Label, nil, next)
	}

	if b.Otherwise != nil {
		return b.Otherwise.Handle(ctx, tileID, action, s)
	}
	return ChoiceBehavior{}.Handle(ctx, tileID, action, s)
}

// Registry maps scene identities to override behaviors. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	behaviors map[scene.Key]Behavior
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{behaviors: make(map[scene.Key]Behavior)}
}

// DefaultRegistry returns the overrides shipped with the narrative.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(scene.Key{SceneID: 2, SubsceneID: 2}, TriggerTileBehavior{})
	r.Register(scene.Key{SceneID: 4, SubsceneID: 1}, TriggerTileBehavior{})
	return r
}

// Register installs b for key, replacing any existing behavior. A nil
// behavior removes the override.
func (r *Registry) Register(key scene.Key, b Behavior) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b == nil {
		delete(r.behaviors, key)
		return
	}
	r.behaviors[key] = b
}

// Lookup returns the behavior registered for key.
func (r *Registry) Lookup(key scene.Key) (Behavior, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.behaviors[key]
	return b, ok
}

// Keys lists every overridden identity in order.
func (r *Registry) Keys() []scene.Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]scene.Key, 0, len(r.behaviors))
	for k := range r.behaviors {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
