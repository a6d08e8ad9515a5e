package catalog

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/jwebster45206/scene-engine/pkg/scene"
	"github.com/jwebster45206/scene-engine/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_AllScenesValid(t *testing.T) {
	v := scene.NewValidator(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	for _, r := range Default().Validate(v) {
		assert.True(t, r.OK, "scene %s has violations: %v", r.Key, r.Violations)
	}
}

func TestDefault_EveryTargetExists(t *testing.T) {
	c := Default()
	for _, s := range c.All() {
		for _, ch := range s.Choices {
			assert.True(t, c.Has(ch.NextKey()), "scene %s choice %q targets unknown scene %s", s.Key(), ch.Label, ch.NextKey())
		}
		for _, ns := range s.NextScenes {
			assert.True(t, c.Has(ns.Key()), "scene %s next_scenes targets unknown scene %s", s.Key(), ns.Key())
		}
		if next, ok := s.Effects.NextScene(); ok {
			assert.True(t, c.Has(next), "scene %s effects.next_scene targets unknown scene %s", s.Key(), next)
		}
	}
}

func TestAll_Ordered(t *testing.T) {
	all := Default().All()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].Key().Less(all[i].Key()))
	}
	assert.Equal(t, len(all), Default().Len())
}

func TestAutoAdvance(t *testing.T) {
	c := Default()
	assert.True(t, c.HasAutoAdvance(1, 1))
	assert.False(t, c.HasAutoAdvance(1, 2))
	assert.False(t, c.HasAutoAdvance(99, 99))

	aa, ok := c.GetAutoAdvanceConfig(1, 1)
	require.True(t, ok)
	assert.Equal(t, 8000, aa.DelayMs)
	assert.Equal(t, scene.Key{SceneID: 1, SubsceneID: 2}, aa.NextScene)

	_, ok = c.GetAutoAdvanceConfig(2, 1)
	assert.False(t, ok)
}

func TestFallback(t *testing.T) {
	c := Default()

	tests := []struct {
		name       string
		sceneID    int
		subsceneID int
		tile       string
		wantTarget scene.Key
		wantZoom   string
		wantEcho   string
	}{
		{name: "1.1 any tile fast-forwards", sceneID: 1, subsceneID: 1, tile: "C3", wantTarget: scene.Key{SceneID: 1, SubsceneID: 2}, wantEcho: scene.EchoFastForward},
		{name: "1.2 K7 zooms to 2.1", sceneID: 1, subsceneID: 2, tile: "K7", wantTarget: scene.Key{SceneID: 2, SubsceneID: 1}, wantZoom: "K7", wantEcho: "rabbit_followed"},
		{name: "1.2 other tile zooms back to 1.1", sceneID: 1, subsceneID: 2, tile: "A1", wantTarget: scene.Key{SceneID: 1, SubsceneID: 1}, wantZoom: "A1", wantEcho: "restart"},
		{name: "2.1 wrong tile does nothing", sceneID: 2, subsceneID: 1, tile: "A1", wantTarget: scene.Key{SceneID: 2, SubsceneID: 1}, wantEcho: scene.EchoNoTransition},
		{name: "3.1 A1 goes direct to 3.2", sceneID: 3, subsceneID: 1, tile: "A1", wantTarget: scene.Key{SceneID: 3, SubsceneID: 2}, wantEcho: "dead_end"},
		{name: "unknown scene is a no-op", sceneID: 99, subsceneID: 99, tile: "A1", wantTarget: scene.Key{SceneID: 99, SubsceneID: 99}, wantEcho: scene.EchoNoTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := c.Fallback(tt.sceneID, tt.subsceneID, tt.tile)
			assert.Equal(t, tt.wantTarget, r.Target())
			assert.Equal(t, tt.wantZoom, r.ZoomTo)
			final := r
			if r.IsTwoPhase() {
				final = *r.NextAction
			}
			assert.Equal(t, tt.wantEcho, final.Echo)
		})
	}
}

func TestNew_ReplacesDuplicates(t *testing.T) {
	a := &scene.Scene{SceneID: 1, SubsceneID: 1, Metadata: &scene.Metadata{Title: "first"}}
	b := &scene.Scene{SceneID: 1, SubsceneID: 1, Metadata: &scene.Metadata{Title: "second"}}
	c := New(a, nil, b)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "second", c.Get(1, 1).Title())
}

func TestSeed(t *testing.T) {
	store := storage.NewMockStorage()
	ctx := context.Background()

	n, err := Default().Seed(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, Default().Len(), n)

	scenes, err := store.ListScenes(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, scenes, Default().Len())

	s, err := store.FindScene(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "Follow the White Rabbit", s.Title())
}

func TestSeed_StoreFailure(t *testing.T) {
	store := storage.NewMockStorage()
	store.SetFailure(errors.New("connection refused"))

	n, err := Default().Seed(context.Background(), store)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, storage.ErrPersistenceUnavailable)
}
