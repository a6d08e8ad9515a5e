package scene

import (
	"fmt"

	"github.com/jwebster45206/scene-engine/pkg/grid"
)

// BackgroundType selects how the client paints a scene behind its grid.
type BackgroundType string

const (
	BackgroundMatrixAnimated BackgroundType = "matrix-animated"
	BackgroundMatrixStatic   BackgroundType = "matrix-static"
	BackgroundVault          BackgroundType = "vault"
	BackgroundDungeon        BackgroundType = "dungeon"
	BackgroundHandDrawn      BackgroundType = "hand-drawn"
	BackgroundStaticGrid     BackgroundType = "static-grid"
)

// BackgroundTypes lists every supported background type.
var BackgroundTypes = []BackgroundType{
	BackgroundMatrixAnimated,
	BackgroundMatrixStatic,
	BackgroundVault,
	BackgroundDungeon,
	BackgroundHandDrawn,
	BackgroundStaticGrid,
}

// Valid reports whether b is one of the supported background types.
func (b BackgroundType) Valid() bool {
	for _, t := range BackgroundTypes {
		if b == t {
			return true
		}
	}
	return false
}

// Handler names which side reacts to a tile click.
type Handler string

const (
	HandlerFrontend Handler = "frontend"
	HandlerBackend  Handler = "backend"
	HandlerBoth     Handler = "both"
	HandlerNone     Handler = "none"
)

// Valid reports whether h is a supported handler.
func (h Handler) Valid() bool {
	switch h {
	case HandlerFrontend, HandlerBackend, HandlerBoth, HandlerNone:
		return true
	}
	return false
}

// FrontendActions is the vocabulary of animation cues a tile may ask the
// client to play.
var FrontendActions = map[string]bool{
	"grid_click": true,
	"hover":      true,
	"zoom":       true,
	"fade":       true,
	"shake":      true,
	"pulse":      true,
	"glow":       true,
	"highlight":  true,
	"ripple":     true,
	"play_sound": true,
	"play_video": true,
	"show_text":  true,
}

// Key is the composite identity of a scene.
type Key struct {
	SceneID    int `json:"scene_id"`
	SubsceneID int `json:"subscene_id"`
}

// String renders the key as "sceneId.subsceneId".
func (k Key) String() string {
	return fmt.Sprintf("%d.%d", k.SceneID, k.SubsceneID)
}

// Less orders keys by scene then subscene.
func (k Key) Less(o Key) bool {
	if k.SceneID != o.SceneID {
		return k.SceneID < o.SceneID
	}
	return k.SubsceneID < o.SubsceneID
}

// Scene is one screen of the narrative.
type Scene struct {
	SceneID      int         `json:"scene_id"`
	SubsceneID   int         `json:"subscene_id"`
	Metadata     *Metadata   `json:"metadata"`
	GridConfig   *GridConfig `json:"grid_config"`
	Tiles        []Tile      `json:"tiles"`
	Choices      []Choice    `json:"choices"`
	Effects      Effects     `json:"effects,omitempty"`
	NextScenes   []NextScene `json:"next_scenes,omitempty"`
	EchoTriggers []string    `json:"echo_triggers,omitempty"`
	AssetPath    string      `json:"asset_path,omitempty"` // opaque reference to a generated canvas/video asset
}

// Key returns the scene's composite identity.
func (s *Scene) Key() Key {
	return Key{SceneID: s.SceneID, SubsceneID: s.SubsceneID}
}

// Title returns the metadata title, or "" when metadata is missing.
func (s *Scene) Title() string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata.Title
}

// BackgroundType returns the metadata background type, or "" when metadata is missing.
func (s *Scene) BackgroundType() BackgroundType {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata.BackgroundType
}

// Metadata carries descriptive scene fields.
type Metadata struct {
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	BackgroundType BackgroundType `json:"background_type"`
}

// GridConfig describes the tile grid laid over a scene.
type GridConfig struct {
	Rows                int    `json:"rows"`
	Cols                int    `json:"cols"`
	Range               string `json:"range,omitempty"` // e.g. "A1:K7"; overrides Rows/Cols when set
	Gap                 int    `json:"gap,omitempty"`
	Padding             int    `json:"padding,omitempty"`
	Debug               bool   `json:"debug,omitempty"`
	InvisibleMode       bool   `json:"invisible_mode,omitempty"`
	MatrixAnimationMode bool   `json:"matrix_animation_mode,omitempty"`
	TriggerTile         string `json:"trigger_tile,omitempty"`
}

// Dimensions returns the grid's rows and cols. When Range is set and
// parses, its extent wins over Rows/Cols.
func (g *GridConfig) Dimensions() (rows, cols int, err error) {
	if g.Range == "" {
		return g.Rows, g.Cols, nil
	}
	r, err := grid.ParseRange(g.Range)
	if err != nil {
		return g.Rows, g.Cols, err
	}
	return r.EndRow + 1, r.EndCol + 1, nil
}

// Tile is one addressable grid cell with its click behavior.
type Tile struct {
	ID      string      `json:"id"`
	Handler Handler     `json:"handler"`
	Actions TileActions `json:"actions"`
	Effects Effects     `json:"effects,omitempty"`
}

// TileActions lists the cues each side runs when the tile is clicked.
type TileActions struct {
	Frontend []string `json:"frontend"`
	Backend  []string `json:"backend"`
}

// Choice is a conditional exit from a scene.
type Choice struct {
	Label     string    `json:"label"`
	Next      [2]int    `json:"next"`
	Condition Condition `json:"condition"`
	Effects   Effects   `json:"effects,omitempty"`
	Echo      string    `json:"echo,omitempty"`
	Zoom      bool      `json:"zoom,omitempty"` // zoom into the clicked tile before moving on
}

// NextKey returns the choice target as a Key.
func (c Choice) NextKey() Key {
	return Key{SceneID: c.Next[0], SubsceneID: c.Next[1]}
}

// NextScene is a denormalized exit listing kept in step with Choices.
type NextScene struct {
	SceneID     int    `json:"scene_id"`
	SubsceneID  int    `json:"subscene_id"`
	TriggerTile string `json:"trigger_tile"`
	Label       string `json:"label,omitempty"`
}

// Key returns the exit target as a Key.
func (n NextScene) Key() Key {
	return Key{SceneID: n.SceneID, SubsceneID: n.SubsceneID}
}

// AutoAdvance is a scene-level timer that forces a transition.
type AutoAdvance struct {
	DelayMs   int `json:"delay_ms"`
	NextScene Key `json:"next_scene"`
}

// AutoAdvance returns the scene's auto-advance timer if both the delay and
// target are configured.
func (s *Scene) AutoAdvance() (AutoAdvance, bool) {
	ms, ok := s.Effects.AutoAdvanceAfterMs()
	if !ok {
		return AutoAdvance{}, false
	}
	next, ok := s.Effects.NextScene()
	if !ok {
		return AutoAdvance{}, false
	}
	return AutoAdvance{DelayMs: ms, NextScene: next}, true
}
