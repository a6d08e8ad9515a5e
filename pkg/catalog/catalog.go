// Package catalog holds the compiled-in scene graph. It is the single source
// of truth for which scenes exist, the seed data for an empty store, and the
// last-resort rule source when persisted data is missing.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/jwebster45206/scene-engine/pkg/scene"
	"github.com/jwebster45206/scene-engine/pkg/storage"
)

// Catalog is an immutable set of scenes keyed by identity. Scenes returned
// by a Catalog are shared and must not be modified.
type Catalog struct {
	scenes map[scene.Key]*scene.Scene
	order  []scene.Key
}

var defaultCatalog = New(builtinScenes...)

// Default returns the compiled-in narrative catalog.
func Default() *Catalog {
	return defaultCatalog
}

// New builds a catalog from scenes. A later scene with the same key replaces
// an earlier one.
func New(scenes ...*scene.Scene) *Catalog {
	c := &Catalog{scenes: make(map[scene.Key]*scene.Scene, len(scenes))}
	for _, s := range scenes {
		if s == nil {
			continue
		}
		if _, dup := c.scenes[s.Key()]; !dup {
			c.order = append(c.order, s.Key())
		}
		c.scenes[s.Key()] = s
	}
	sort.Slice(c.order, func(i, j int) bool { return c.order[i].Less(c.order[j]) })
	return c
}

// Get returns the scene for the identity, or nil.
func (c *Catalog) Get(sceneID, subsceneID int) *scene.Scene {
	return c.scenes[scene.Key{SceneID: sceneID, SubsceneID: subsceneID}]
}

// Has reports whether the catalog knows the identity.
func (c *Catalog) Has(k scene.Key) bool {
	_, ok := c.scenes[k]
	return ok
}

// All returns every scene ordered by scene then subscene.
func (c *Catalog) All() []*scene.Scene {
	out := make([]*scene.Scene, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.scenes[k])
	}
	return out
}

// Len returns the number of scenes.
func (c *Catalog) Len() int {
	return len(c.order)
}

// HasAutoAdvance reports whether the scene sets effects.auto_advance_after_ms.
func (c *Catalog) HasAutoAdvance(sceneID, subsceneID int) bool {
	s := c.Get(sceneID, subsceneID)
	if s == nil {
		return false
	}
	_, ok := s.Effects.AutoAdvanceAfterMs()
	return ok
}

// GetAutoAdvanceConfig returns the scene's auto-advance delay and target.
func (c *Catalog) GetAutoAdvanceConfig(sceneID, subsceneID int) (scene.AutoAdvance, bool) {
	s := c.Get(sceneID, subsceneID)
	if s == nil {
		return scene.AutoAdvance{}, false
	}
	return s.AutoAdvance()
}

// Fallback resolves a click using only catalog data. It never fails: an
// unknown identity resolves to a no-op on that identity.
//
//   - auto-advance scenes fast-forward to their target on any click
//   - otherwise the first matching choice wins, as a zoom-then-transition
//     when the choice asks for a zoom
//   - otherwise effects.next_scene, otherwise a no-op
func (c *Catalog) Fallback(sceneID, subsceneID int, tileID string) scene.TransitionResult {
	k := scene.Key{SceneID: sceneID, SubsceneID: subsceneID}
	s := c.scenes[k]
	if s == nil {
		return scene.NoTransition(k)
	}

	if aa, ok := s.AutoAdvance(); ok {
		return scene.Direct(aa.NextScene, "", nil, scene.EchoFastForward)
	}

	if ch, ok := scene.FirstMatch(s.Choices, tileID); ok {
		next := scene.Direct(ch.NextKey(), ch.Label, ch.Effects.Clone(), ch.Echo)
		if ch.Zoom {
			return scene.ZoomThen(tileID, ch.Label, nil, next)
		}
		return next
	}

	return scene.DefaultTransition(s)
}

// Validate runs the validator over every catalog scene.
func (c *Catalog) Validate(v *scene.Validator) []scene.Report {
	reports := make([]scene.Report, 0, len(c.order))
	for _, s := range c.All() {
		reports = append(reports, v.Validate(s))
	}
	return reports
}

// Seed upserts every catalog scene into store and returns how many were written.
func (c *Catalog) Seed(ctx context.Context, store storage.SceneStore) (int, error) {
	n := 0
	for _, s := range c.All() {
		if err := store.UpsertScene(ctx, s); err != nil {
			return n, fmt.Errorf("failed to seed scene %s: %w", s.Key(), err)
		}
		n++
	}
	return n, nil
}
