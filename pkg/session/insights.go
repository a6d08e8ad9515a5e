package session

import (
	"sort"
	"time"

	"github.com/jwebster45206/scene-engine/pkg/scene"
)

// Insights summarizes a session's interaction log.
type Insights struct {
	SessionID            string        `json:"session_id"`
	TotalInteractions    int           `json:"total_interactions"`
	// ScenesVisited holds the distinct "scene.subscene" keys clicked in,
	// sorted. Transition targets count only once the player clicks there.
	ScenesVisited        []string      `json:"scenes_visited"`
	ZoomActionCount      int           `json:"zoom_action_count"`
	SceneTransitionCount int           `json:"scene_transition_count"`
	Journey              []JourneyStep `json:"journey"`
}

// JourneyStep is one click on the player's path.
type JourneyStep struct {
	Scene      string    `json:"scene"`
	Tile       string    `json:"tile"`
	ZoomTarget string    `json:"zoom_target,omitempty"`
	To         string    `json:"to,omitempty"`
	Echo       string    `json:"echo,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Summarize aggregates log into Insights. ScenesVisited lists the distinct
// scenes clicked on, in scene order. A click counts as a scene transition
// when it resolved to a different scene than the one it happened on.
func Summarize(sessionID string, log []InteractionLogEntry) Insights {
	in := Insights{
		SessionID:         sessionID,
		TotalInteractions: len(log),
		ScenesVisited:     []string{},
		Journey:           make([]JourneyStep, 0, len(log)),
	}

	visited := make(map[scene.Key]bool)
	for _, e := range log {
		from := e.SceneKey()
		visited[from] = true

		if e.ZoomTarget != "" {
			in.ZoomActionCount++
		}

		step := JourneyStep{
			Scene:      from.String(),
			Tile:       e.GridTile,
			ZoomTarget: e.ZoomTarget,
			Timestamp:  e.Timestamp,
		}
		if e.NextScene != nil {
			to := e.NextScene.Target()
			step.To = to.String()
			step.Echo = finalEcho(*e.NextScene)
			if to != from {
				in.SceneTransitionCount++
			}
		}
		in.Journey = append(in.Journey, step)
	}

	keys := make([]scene.Key, 0, len(visited))
	for k := range visited {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	for _, k := range keys {
		in.ScenesVisited = append(in.ScenesVisited, k.String())
	}

	return in
}

func finalEcho(r scene.TransitionResult) string {
	for r.IsTwoPhase() {
		r = *r.NextAction
	}
	return r.Echo
}
