package scene

// Echo tags the engine itself emits.
const (
	EchoNoTransition         = "no_transition"
	EchoAutoAdvanceTriggered = "auto_advance_triggered"
	EchoFastForward          = "fast_forward"
	EchoDefaultTransition    = "default_transition"
)

// TransitionResult is the outcome of a tile click. A direct result names the
// scene to show next. A two-phase result asks the client to zoom into ZoomTo
// and then apply NextAction as if it were a fresh direct result.
type TransitionResult struct {
	SceneID    int               `json:"scene_id,omitempty"`
	SubsceneID int               `json:"subscene_id,omitempty"`
	ZoomTo     string            `json:"zoom_to,omitempty"`
	Message    string            `json:"message,omitempty"`
	Effects    Effects           `json:"effects,omitempty"`
	Echo       string            `json:"echo,omitempty"`
	NextAction *TransitionResult `json:"next_action,omitempty"`
}

// Direct builds a direct result to key.
func Direct(key Key, message string, effects Effects, echo string) TransitionResult {
	return TransitionResult{
		SceneID:    key.SceneID,
		SubsceneID: key.SubsceneID,
		Message:    message,
		Effects:    effects,
		Echo:       echo,
	}
}

// ZoomThen builds a two-phase result.
func ZoomThen(tileID, message string, effects Effects, next TransitionResult) TransitionResult {
	return TransitionResult{
		ZoomTo:     tileID,
		Message:    message,
		Effects:    effects,
		NextAction: &next,
	}
}

// NoTransition is the "nothing happens" result for the given scene.
func NoTransition(key Key) TransitionResult {
	return Direct(key, "", nil, EchoNoTransition)
}

// IsTwoPhase reports whether the result is a zoom-then-transition.
func (r TransitionResult) IsTwoPhase() bool {
	return r.ZoomTo != "" && r.NextAction != nil
}

// IsNoOp reports whether the result leaves the player where they are.
func (r TransitionResult) IsNoOp() bool {
	return !r.IsTwoPhase() && r.Echo == EchoNoTransition
}

// Target returns the scene the player ends up on once every phase is applied.
func (r TransitionResult) Target() Key {
	for r.IsTwoPhase() {
		r = *r.NextAction
	}
	return Key{SceneID: r.SceneID, SubsceneID: r.SubsceneID}
}

// EvaluateChoices applies the scene's choices to tileID. The first matching
// choice wins. With no match the scene's default next_scene is used, and
// without one the result is a no-op.
func EvaluateChoices(s *Scene, tileID string) TransitionResult {
	if c, ok := FirstMatch(s.Choices, tileID); ok {
		return Direct(c.NextKey(), c.Label, c.Effects.Clone(), c.Echo)
	}
	return DefaultTransition(s)
}

// FirstMatch returns the first choice, in authoring order, whose condition
// is satisfied by tileID.
func FirstMatch(choices []Choice, tileID string) (Choice, bool) {
	for _, c := range choices {
		if c.Condition.Matches(tileID) {
			return c, true
		}
	}
	return Choice{}, false
}

// DefaultTransition follows the scene's effects.next_scene, or yields a no-op.
func DefaultTransition(s *Scene) TransitionResult {
	if next, ok := s.Effects.NextScene(); ok {
		return Direct(next, "", nil, EchoDefaultTransition)
	}
	return NoTransition(s.Key())
}
