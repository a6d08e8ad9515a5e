package catalog

import "github.com/jwebster45206/scene-engine/pkg/scene"

func key(sceneID, subsceneID int) scene.Key {
	return scene.Key{SceneID: sceneID, SubsceneID: subsceneID}
}

// builtinScenes is every scene the narrative can reach. The graph is:
//
//	1.1 -(auto 8s)-> 1.2 -K7-> 2.1 -C4-> 2.2 -F2-> 3.1 -A1-> 3.2 -(auto 5s)-> 3.1
//	                 1.2 -else-> 1.1     3.1 -H5-> 4.1 -D4-> 5.1 -(auto 12s)-> 1.1
var builtinScenes = []*scene.Scene{
	{
		SceneID:    1,
		SubsceneID: 1,
		Metadata: &scene.Metadata{
			Title:          "Wake Up",
			Description:    "Green glyphs rain down a black screen. Something is trying to reach you.",
			BackgroundType: scene.BackgroundMatrixAnimated,
		},
		GridConfig: &scene.GridConfig{Rows: 10, Cols: 10, Gap: 2, Padding: 8, InvisibleMode: true, MatrixAnimationMode: true},
		Tiles: []scene.Tile{
			{ID: "E5", Handler: scene.HandlerFrontend, Actions: scene.TileActions{Frontend: []string{"ripple", "play_sound"}}},
			{ID: "F6", Handler: scene.HandlerFrontend, Actions: scene.TileActions{Frontend: []string{"ripple"}}},
		},
		Choices: []scene.Choice{},
		Effects: scene.Effects{
			scene.EffectAutoAdvanceAfterMs: 8000,
			scene.EffectNextScene:          key(1, 2),
		},
		NextScenes:   []scene.NextScene{},
		EchoTriggers: []string{"wake_up"},
		AssetPath:    "assets/generated/1-1-rain.webm",
	},
	{
		SceneID:    1,
		SubsceneID: 2,
		Metadata: &scene.Metadata{
			Title:          "Follow the White Rabbit",
			Description:    "The rain freezes into a lattice. One cell in the far corner flickers white.",
			BackgroundType: scene.BackgroundMatrixStatic,
		},
		GridConfig: &scene.GridConfig{Rows: 7, Cols: 11, Gap: 2, Padding: 8, TriggerTile: "K7"},
		Tiles: []scene.Tile{
			{ID: "K7", Handler: scene.HandlerBoth, Actions: scene.TileActions{Frontend: []string{"zoom", "glow"}, Backend: []string{"transition"}}},
			{ID: "A1", Handler: scene.HandlerFrontend, Actions: scene.TileActions{Frontend: []string{"shake"}}},
		},
		Choices: []scene.Choice{
			{Label: "You follow the rabbit through the lattice.", Next: [2]int{2, 1}, Condition: scene.Equals("K7"), Echo: "rabbit_followed", Zoom: true},
			{Label: "The lattice collapses. You wake again.", Next: [2]int{1, 1}, Condition: scene.NotEquals("K7"), Echo: "restart", Zoom: true},
		},
		NextScenes: []scene.NextScene{
			{SceneID: 2, SubsceneID: 1, TriggerTile: "K7", Label: "Follow the rabbit"},
			{SceneID: 1, SubsceneID: 1, TriggerTile: "A1", Label: "Wake again"},
		},
		EchoTriggers: []string{"rabbit_followed", "restart"},
		AssetPath:    "assets/generated/1-2-lattice.png",
	},
	{
		SceneID:    2,
		SubsceneID: 1,
		Metadata: &scene.Metadata{
			Title:          "The Vault Door",
			Description:    "A round steel door fills the wall. Its dial has eight positions and one of them is warm.",
			BackgroundType: scene.BackgroundVault,
		},
		GridConfig: &scene.GridConfig{Rows: 6, Cols: 8, Gap: 4, Padding: 12, TriggerTile: "C4"},
		Tiles: []scene.Tile{
			{ID: "C4", Handler: scene.HandlerBoth, Actions: scene.TileActions{Frontend: []string{"zoom", "play_sound"}, Backend: []string{"transition"}}},
			{ID: "D4", Handler: scene.HandlerFrontend, Actions: scene.TileActions{Frontend: []string{"pulse"}}},
			{ID: "H1", Handler: scene.HandlerNone},
		},
		Choices: []scene.Choice{
			{Label: "The dial clicks into place and the door swings open.", Next: [2]int{2, 2}, Condition: scene.Equals("C4"), Echo: "vault_opened", Zoom: true},
		},
		NextScenes: []scene.NextScene{
			{SceneID: 2, SubsceneID: 2, TriggerTile: "C4", Label: "Open the vault"},
		},
		EchoTriggers: []string{"vault_opened"},
		AssetPath:    "assets/generated/2-1-door.png",
	},
	{
		SceneID:    2,
		SubsceneID: 2,
		Metadata: &scene.Metadata{
			Title:          "Inside the Vault",
			Description:    "Shelves of sealed drawers. A hatch in the floor is outlined in faint light.",
			BackgroundType: scene.BackgroundVault,
		},
		GridConfig: &scene.GridConfig{Rows: 6, Cols: 8, Gap: 4, Padding: 12, TriggerTile: "F2"},
		Tiles: []scene.Tile{
			{ID: "F2", Handler: scene.HandlerBoth, Actions: scene.TileActions{Frontend: []string{"zoom", "highlight"}, Backend: []string{"transition"}}},
			{ID: "A6", Handler: scene.HandlerFrontend, Actions: scene.TileActions{Frontend: []string{"show_text"}}, Effects: scene.Effects{"text": "The drawer is empty."}},
		},
		Choices: []scene.Choice{
			{Label: "You lift the hatch and climb down.", Next: [2]int{3, 1}, Condition: scene.Equals("F2"), Echo: "hatch_opened", Zoom: true},
		},
		NextScenes: []scene.NextScene{
			{SceneID: 3, SubsceneID: 1, TriggerTile: "F2", Label: "Descend"},
		},
		EchoTriggers: []string{"hatch_opened"},
		AssetPath:    "assets/generated/2-2-shelves.png",
	},
	{
		SceneID:    3,
		SubsceneID: 1,
		Metadata: &scene.Metadata{
			Title:          "The Dungeon",
			Description:    "Wet stone corridors branch in every direction. Torches gutter along the walls.",
			BackgroundType: scene.BackgroundDungeon,
		},
		GridConfig: &scene.GridConfig{Rows: 8, Cols: 12, Gap: 1, Padding: 4},
		Tiles: []scene.Tile{
			{ID: "A1", Handler: scene.HandlerBoth, Actions: scene.TileActions{Frontend: []string{"fade"}, Backend: []string{"transition"}}},
			{ID: "H5", Handler: scene.HandlerBoth, Actions: scene.TileActions{Frontend: []string{"zoom"}, Backend: []string{"transition"}}},
			{ID: "L8", Handler: scene.HandlerBackend, Actions: scene.TileActions{Backend: []string{"log_only"}}},
		},
		Choices: []scene.Choice{
			{Label: "The corridor narrows to nothing.", Next: [2]int{3, 2}, Condition: scene.Equals("A1"), Echo: "dead_end"},
			{Label: "A door painted on the wall opens onto paper.", Next: [2]int{4, 1}, Condition: scene.Equals("H5"), Echo: "painted_door", Zoom: true},
		},
		NextScenes: []scene.NextScene{
			{SceneID: 3, SubsceneID: 2, TriggerTile: "A1", Label: "West corridor"},
			{SceneID: 4, SubsceneID: 1, TriggerTile: "H5", Label: "Painted door"},
		},
		EchoTriggers: []string{"dead_end", "painted_door"},
		AssetPath:    "assets/generated/3-1-corridors.png",
	},
	{
		SceneID:    3,
		SubsceneID: 2,
		Metadata: &scene.Metadata{
			Title:          "Dead End",
			Description:    "A blank wall. Behind you the torches go out one by one.",
			BackgroundType: scene.BackgroundDungeon,
		},
		GridConfig: &scene.GridConfig{Rows: 4, Cols: 4, Gap: 1, Padding: 4},
		Tiles:      []scene.Tile{},
		Choices:    []scene.Choice{},
		Effects: scene.Effects{
			scene.EffectAutoAdvanceAfterMs: 5000,
			scene.EffectNextScene:          key(3, 1),
		},
		EchoTriggers: []string{"dead_end"},
		AssetPath:    "assets/generated/3-2-wall.png",
	},
	{
		SceneID:    4,
		SubsceneID: 1,
		Metadata: &scene.Metadata{
			Title:          "The Sketchbook",
			Description:    "Everything is pencil lines. A doorway is half drawn in the middle of the page.",
			BackgroundType: scene.BackgroundHandDrawn,
		},
		GridConfig: &scene.GridConfig{Range: "A1:F6", Gap: 0, Padding: 16, TriggerTile: "D4"},
		Tiles: []scene.Tile{
			{ID: "D4", Handler: scene.HandlerBoth, Actions: scene.TileActions{Frontend: []string{"zoom", "glow"}, Backend: []string{"transition"}}},
			{ID: "A1", Handler: scene.HandlerFrontend, Actions: scene.TileActions{Frontend: []string{"shake"}}},
		},
		Choices: []scene.Choice{
			{Label: "You finish drawing the door and step through.", Next: [2]int{5, 1}, Condition: scene.Equals("D4"), Echo: "door_drawn", Zoom: true},
			{Label: "The lines wobble but hold.", Next: [2]int{4, 1}, Condition: scene.NotEquals("D4"), Echo: "sketch_wobble"},
		},
		NextScenes: []scene.NextScene{
			{SceneID: 5, SubsceneID: 1, TriggerTile: "D4", Label: "Finish the door"},
		},
		EchoTriggers: []string{"door_drawn", "sketch_wobble"},
		AssetPath:    "assets/generated/4-1-sketch.png",
	},
	{
		SceneID:    5,
		SubsceneID: 1,
		Metadata: &scene.Metadata{
			Title:          "Exit Grid",
			Description:    "A plain white grid. The credits scroll, and then the rain begins again.",
			BackgroundType: scene.BackgroundStaticGrid,
		},
		GridConfig: &scene.GridConfig{Rows: 5, Cols: 5, Gap: 2, Padding: 8, Debug: false},
		Tiles: []scene.Tile{
			{ID: "C3", Handler: scene.HandlerFrontend, Actions: scene.TileActions{Frontend: []string{"show_text"}}, Effects: scene.Effects{"text": "Thanks for playing."}},
		},
		Choices: []scene.Choice{},
		Effects: scene.Effects{
			scene.EffectAutoAdvanceAfterMs: 12000,
			scene.EffectNextScene:          key(1, 1),
			"credits":                      true,
		},
		EchoTriggers: []string{"credits"},
		AssetPath:    "assets/generated/5-1-credits.png",
	},
}
