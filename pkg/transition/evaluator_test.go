package transition

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/jwebster45206/scene-engine/pkg/catalog"
	"github.com/jwebster45206/scene-engine/pkg/scene"
	"github.com/jwebster45206/scene-engine/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func k(sceneID, subsceneID int) scene.Key {
	return scene.Key{SceneID: sceneID, SubsceneID: subsceneID}
}

func seededStore(t *testing.T) *storage.MockStorage {
	t.Helper()
	store := storage.NewMockStorage()
	_, err := catalog.Default().Seed(context.Background(), store)
	require.NoError(t, err)
	return store
}

func TestEvaluate_ChoicePrecedence(t *testing.T) {
	e := NewEvaluator(seededStore(t), nil, NewRegistry(), testLogger())
	ctx := context.Background()

	r := e.Evaluate(ctx, 1, 2, "K7", "click")
	assert.False(t, r.IsTwoPhase())
	assert.Equal(t, k(2, 1), r.Target())
	assert.Equal(t, "rabbit_followed", r.Echo)
	assert.Equal(t, "You follow the rabbit through the lattice.", r.Message)

	r = e.Evaluate(ctx, 1, 2, "A1", "click")
	assert.Equal(t, k(1, 1), r.Target())
	assert.Equal(t, "restart", r.Echo)
}

func TestEvaluate_AutoAdvanceBeatsEverything(t *testing.T) {
	store := storage.NewMockStorage()
	store.AddScene(&scene.Scene{
		SceneID:    7,
		SubsceneID: 1,
		Metadata:   &scene.Metadata{Title: "Timed", BackgroundType: scene.BackgroundVault},
		Choices: []scene.Choice{
			{Label: "never", Next: [2]int{7, 2}, Condition: scene.Equals("A1"), Echo: "choice"},
		},
		Effects: scene.Effects{
			scene.EffectAutoAdvanceAfterMs: 3000,
			scene.EffectNextScene:          k(7, 3),
		},
	})
	registry := NewRegistry()
	registry.Register(k(7, 1), BehaviorFunc(func(context.Context, string, string, *scene.Scene) scene.TransitionResult {
		t.Fatal("override must not run for auto-advance scenes")
		return scene.TransitionResult{}
	}))

	e := NewEvaluator(store, nil, registry, testLogger())
	r := e.Evaluate(context.Background(), 7, 1, "A1", "click")

	assert.Equal(t, k(7, 3), r.Target())
	assert.Equal(t, scene.EchoAutoAdvanceTriggered, r.Echo)
	delay, ok := r.Effects.Delay()
	require.True(t, ok)
	assert.Equal(t, 3000, delay)
}

func TestEvaluate_AutoAdvanceNeedsTarget(t *testing.T) {
	store := storage.NewMockStorage()
	store.AddScene(&scene.Scene{
		SceneID:    7,
		SubsceneID: 1,
		Metadata:   &scene.Metadata{Title: "Half timed", BackgroundType: scene.BackgroundVault},
		Choices: []scene.Choice{
			{Label: "go", Next: [2]int{7, 2}, Condition: scene.Equals("A1"), Echo: "choice"},
		},
		Effects: scene.Effects{scene.EffectAutoAdvanceAfterMs: 3000},
	})

	e := NewEvaluator(store, nil, nil, testLogger())
	r := e.Evaluate(context.Background(), 7, 1, "A1", "click")
	assert.Equal(t, k(7, 2), r.Target())
	assert.Equal(t, "choice", r.Echo)
}

func TestEvaluate_UnknownSceneIsNoOp(t *testing.T) {
	e := NewEvaluator(storage.NewMockStorage(), nil, nil, testLogger())
	r := e.Evaluate(context.Background(), 99, 99, "A1", "click")

	assert.True(t, r.IsNoOp())
	assert.Equal(t, k(99, 99), r.Target())
	assert.Equal(t, scene.EchoNoTransition, r.Echo)
}

func TestEvaluate_MissingFromStoreUsesCatalog(t *testing.T) {
	e := NewEvaluator(storage.NewMockStorage(), nil, nil, testLogger())
	r := e.Evaluate(context.Background(), 1, 1, "B2", "click")

	assert.Equal(t, k(1, 2), r.Target())
	assert.Equal(t, scene.EchoFastForward, r.Echo)
}

func TestEvaluate_PersistenceFailureFallsBack(t *testing.T) {
	store := seededStore(t)
	store.SetFailure(errors.New("dial tcp: connection refused"))

	e := NewEvaluator(store, nil, nil, testLogger())
	r := e.Evaluate(context.Background(), 1, 2, "K7", "click")

	require.True(t, r.IsTwoPhase())
	assert.Equal(t, "K7", r.ZoomTo)
	assert.Equal(t, k(2, 1), r.Target())
	assert.Equal(t, "rabbit_followed", r.NextAction.Echo)
}

func TestEvaluate_NilStore(t *testing.T) {
	e := NewEvaluator(nil, nil, nil, testLogger())
	r := e.Evaluate(context.Background(), 3, 1, "A1", "click")
	assert.Equal(t, k(3, 2), r.Target())
	assert.Equal(t, "dead_end", r.Echo)
}

func TestEvaluate_OverrideReturnedVerbatim(t *testing.T) {
	want := scene.ZoomThen("B2", "custom", scene.Effects{"flash": true}, scene.Direct(k(9, 9), "elsewhere", nil, "custom_echo"))

	var gotTile, gotAction string
	registry := NewRegistry()
	registry.Register(k(1, 2), BehaviorFunc(func(_ context.Context, tileID, action string, s *scene.Scene) scene.TransitionResult {
		gotTile, gotAction = tileID, action
		assert.Equal(t, "Follow the White Rabbit", s.Title())
		return want
	}))

	e := NewEvaluator(seededStore(t), nil, registry, testLogger())
	r := e.Evaluate(context.Background(), 1, 2, "B2", "hover")

	assert.Equal(t, want, r)
	assert.Equal(t, "B2", gotTile)
	assert.Equal(t, "hover", gotAction)
}

func TestEvaluate_PanicRecoversToFallback(t *testing.T) {
	registry := NewRegistry()
	registry.Register(k(1, 2), BehaviorFunc(func(context.Context, string, string, *scene.Scene) scene.TransitionResult {
		panic("boom")
	}))

	e := NewEvaluator(seededStore(t), nil, registry, testLogger())

	var r scene.TransitionResult
	require.NotPanics(t, func() {
		r = e.Evaluate(context.Background(), 1, 2, "K7", "click")
	})
	assert.Equal(t, catalog.Default().Fallback(1, 2, "K7"), r)
}

func TestEvaluate_NoChoices(t *testing.T) {
	store := storage.NewMockStorage()
	store.AddScene(&scene.Scene{
		SceneID:    8,
		SubsceneID: 1,
		Metadata:   &scene.Metadata{Title: "Empty", BackgroundType: scene.BackgroundDungeon},
		Choices:    []scene.Choice{},
	})
	store.AddScene(&scene.Scene{
		SceneID:    8,
		SubsceneID: 2,
		Metadata:   &scene.Metadata{Title: "Corridor", BackgroundType: scene.BackgroundDungeon},
		Choices:    []scene.Choice{},
		Effects:    scene.Effects{scene.EffectNextScene: map[string]any{"scene_id": 8, "subscene_id": 3}},
	})

	e := NewEvaluator(store, nil, nil, testLogger())
	ctx := context.Background()

	r := e.Evaluate(ctx, 8, 1, "A1", "click")
	assert.True(t, r.IsNoOp())
	assert.Equal(t, k(8, 1), r.Target())

	r = e.Evaluate(ctx, 8, 2, "A1", "click")
	assert.Equal(t, k(8, 3), r.Target())
	assert.Equal(t, scene.EchoDefaultTransition, r.Echo)
}

func TestEvaluate_UnknownBackgroundUsesCatalog(t *testing.T) {
	store := storage.NewMockStorage()
	store.AddScene(&scene.Scene{
		SceneID:    1,
		SubsceneID: 2,
		Metadata:   &scene.Metadata{Title: "Corrupted", BackgroundType: "watercolor"},
	})

	e := NewEvaluator(store, nil, nil, testLogger())
	r := e.Evaluate(context.Background(), 1, 2, "K7", "click")

	require.True(t, r.IsTwoPhase())
	assert.Equal(t, k(2, 1), r.Target())
}

func TestTriggerTileBehavior(t *testing.T) {
	e := NewEvaluator(seededStore(t), nil, DefaultRegistry(), testLogger())
	ctx := context.Background()

	r := e.Evaluate(ctx, 2, 2, "F2", "click")
	require.True(t, r.IsTwoPhase())
	assert.Equal(t, "F2", r.ZoomTo)
	assert.Equal(t, "Descend", r.Message)
	assert.Equal(t, k(3, 1), r.Target())
	assert.Equal(t, "hatch_opened", r.NextAction.Echo)
	assert.Equal(t, "You lift the hatch and climb down.", r.NextAction.Message)

	r = e.Evaluate(ctx, 2, 2, "A6", "click")
	assert.True(t, r.IsNoOp())
	assert.Equal(t, k(2, 2), r.Target())

	r = e.Evaluate(ctx, 4, 1, "B2", "click")
	assert.False(t, r.IsTwoPhase())
	assert.Equal(t, k(4, 1), r.Target())
	assert.Equal(t, "sketch_wobble", r.Echo)
}

func TestTriggerTileBehavior_Otherwise(t *testing.T) {
	s := catalog.Default().Get(2, 1)
	b := TriggerTileBehavior{Otherwise: BehaviorFunc(func(context.Context, string, string, *scene.Scene) scene.TransitionResult {
		return scene.Direct(k(5, 1), "", nil, "skip")
	})}

	r := b.Handle(context.Background(), "H1", "click", s)
	assert.Equal(t, k(5, 1), r.Target())

	r = b.Handle(context.Background(), "C4", "click", s)
	assert.True(t, r.IsTwoPhase())
	assert.Equal(t, k(2, 2), r.Target())
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []scene.Key{k(2, 2), k(4, 1)}, r.Keys())

	_, ok := r.Lookup(k(1, 2))
	assert.False(t, ok)

	r.Register(k(1, 2), ChoiceBehavior{})
	_, ok = r.Lookup(k(1, 2))
	assert.True(t, ok)

	r.Register(k(1, 2), nil)
	_, ok = r.Lookup(k(1, 2))
	assert.False(t, ok)

	var nilRegistry *Registry
	_, ok = nilRegistry.Lookup(k(1, 1))
	assert.False(t, ok)
}
