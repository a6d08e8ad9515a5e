package scene

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/scene-engine/pkg/grid"
)

const (
	MinGridSize = 1
	MaxGridSize = 100
)

// Report is the result of validating one scene.
type Report struct {
	Key        Key      `json:"key"`
	OK         bool     `json:"ok"`
	Violations []string `json:"violations,omitempty"`
}

// Validator checks scenes against their structural invariants. Findings are
// advisory: the scene is never modified and callers may keep using it.
type Validator struct {
	logger *slog.Logger
}

// NewValidator creates a validator that logs each report to logger.
// A nil logger uses slog.Default().
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// Validate checks s and logs a pass/fail line with the scene identity.
func (v *Validator) Validate(s *Scene) Report {
	r := Validate(s)
	if r.OK {
		v.logger.Debug("Scene validation passed", "scene", r.Key.String())
	} else {
		v.logger.Warn("Scene validation failed",
			"scene", r.Key.String(),
			"violation_count", len(r.Violations),
			"violations", r.Violations)
	}
	return r
}

// Validate checks s without logging. Every violation is reported, not just
// the first.
func Validate(s *Scene) Report {
	if s == nil {
		return Report{Violations: []string{"scene is nil"}}
	}
	c := &checker{}
	c.check(s)
	return Report{Key: s.Key(), OK: len(c.violations) == 0, Violations: c.violations}
}

type checker struct {
	violations []string
	rows, cols int
	hasBounds  bool
}

func (c *checker) addError(format string, args ...any) {
	c.violations = append(c.violations, fmt.Sprintf(format, args...))
}

func (c *checker) check(s *Scene) {
	if s.SceneID < 1 {
		c.addError("scene_id must be a positive integer, got %d", s.SceneID)
	}
	if s.SubsceneID < 1 {
		c.addError("subscene_id must be a positive integer, got %d", s.SubsceneID)
	}

	c.checkMetadata(s.Metadata)
	c.checkGridConfig(s.GridConfig)

	if s.Tiles == nil {
		c.addError("tiles is required")
	}
	for i, t := range s.Tiles {
		c.checkTile(i, t)
	}

	if s.Choices == nil {
		c.addError("choices is required")
	}
	for i, ch := range s.Choices {
		c.checkChoice(i, ch)
	}

	for i, ns := range s.NextScenes {
		c.checkNextScene(i, ns)
	}
	c.checkNextScenesConsistency(s)

	if ms, ok := s.Effects.AutoAdvanceAfterMs(); ok && ms < 0 {
		c.addError("effects.auto_advance_after_ms must not be negative, got %d", ms)
	}
	if _, ok := s.Effects.lookup(EffectNextScene); ok {
		if _, ok := s.Effects.NextScene(); !ok {
			c.addError("effects.next_scene is not a valid scene reference")
		}
	}
}

func (c *checker) checkMetadata(m *Metadata) {
	if m == nil {
		c.addError("metadata is required")
		return
	}
	if m.Title == "" {
		c.addError("metadata.title is required")
	}
	if m.BackgroundType == "" {
		c.addError("metadata.background_type is required")
	} else if !m.BackgroundType.Valid() {
		c.addError("metadata.background_type %q is not one of %v", m.BackgroundType, BackgroundTypes)
	}
}

func (c *checker) checkGridConfig(g *GridConfig) {
	if g == nil {
		c.addError("grid_config is required")
		return
	}

	rows, cols, err := g.Dimensions()
	if err != nil {
		c.addError("grid_config.range %q is invalid: %v", g.Range, err)
	}
	validRows := rows >= MinGridSize && rows <= MaxGridSize
	validCols := cols >= MinGridSize && cols <= MaxGridSize
	if !validRows {
		c.addError("grid_config.rows must be in [%d,%d], got %d", MinGridSize, MaxGridSize, rows)
	}
	if !validCols {
		c.addError("grid_config.cols must be in [%d,%d], got %d", MinGridSize, MaxGridSize, cols)
	}
	if validRows && validCols {
		c.rows, c.cols, c.hasBounds = rows, cols, true
	}

	if g.TriggerTile != "" {
		c.checkTileRef("grid_config.trigger_tile", g.TriggerTile)
	}
}

// checkTileRef reports a malformed or out-of-bounds tile reference.
func (c *checker) checkTileRef(field, id string) {
	if !grid.IsTileID(id) {
		c.addError("%s %q is not a valid tile id", field, id)
		return
	}
	if c.hasBounds && !grid.InBounds(id, c.rows, c.cols) {
		c.addError("%s %q is outside the %dx%d grid", field, id, c.rows, c.cols)
	}
}

func (c *checker) checkTile(i int, t Tile) {
	field := fmt.Sprintf("tiles[%d].id", i)
	c.checkTileRef(field, t.ID)

	if !t.Handler.Valid() {
		c.addError("tile %q has invalid handler %q", t.ID, t.Handler)
	}
	switch t.Handler {
	case HandlerNone:
		if len(t.Actions.Frontend) > 0 || len(t.Actions.Backend) > 0 {
			c.addError("tile %q has handler none but declares actions", t.ID)
		}
	case HandlerFrontend:
		if len(t.Actions.Backend) > 0 {
			c.addError("tile %q has handler frontend but declares backend actions", t.ID)
		}
	}

	for _, a := range t.Actions.Frontend {
		if !FrontendActions[a] {
			c.addError("tile %q has unknown frontend action %q", t.ID, a)
		}
	}
}

func (c *checker) checkChoice(i int, ch Choice) {
	if !ch.Condition.Valid() {
		c.addError("choices[%d] has unsupported condition %q", i, ch.Condition.String())
	} else if !grid.IsTileID(ch.Condition.Tile) {
		c.addError("choices[%d] condition tile %q is not a valid tile id", i, ch.Condition.Tile)
	}
	if ch.Next[0] < 1 || ch.Next[1] < 1 {
		c.addError("choices[%d] next must be positive scene/subscene ids, got %v", i, ch.Next)
	}
}

func (c *checker) checkNextScene(i int, ns NextScene) {
	c.checkTileRef(fmt.Sprintf("next_scenes[%d].trigger_tile", i), ns.TriggerTile)
	if ns.SceneID < 1 || ns.SubsceneID < 1 {
		c.addError("next_scenes[%d] must reference positive scene/subscene ids, got %d.%d", i, ns.SceneID, ns.SubsceneID)
	}
}

// checkNextScenesConsistency enforces that next_scenes only lists exits that
// choices or the default transition can actually produce.
func (c *checker) checkNextScenesConsistency(s *Scene) {
	reachable := make(map[Key]bool, len(s.Choices)+1)
	for _, ch := range s.Choices {
		reachable[ch.NextKey()] = true
	}
	if next, ok := s.Effects.NextScene(); ok {
		reachable[next] = true
	}
	for i, ns := range s.NextScenes {
		if !reachable[ns.Key()] {
			c.addError("next_scenes[%d] targets %s but no choice leads there", i, ns.Key())
		}
	}
}
