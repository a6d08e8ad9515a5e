package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/scene-engine/pkg/catalog"
	"github.com/jwebster45206/scene-engine/pkg/journal"
	"github.com/jwebster45206/scene-engine/pkg/scene"
	"github.com/jwebster45206/scene-engine/pkg/session"
	"github.com/jwebster45206/scene-engine/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "scenes.db"), testLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "  ", testLogger())
	assert.Error(t, err)
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenes.db")
	ctx := context.Background()

	first, err := Open(ctx, path, testLogger())
	require.NoError(t, err)
	require.NoError(t, first.UpsertScene(ctx, catalog.Default().Get(1, 1)))
	require.NoError(t, first.Close())

	second, err := Open(ctx, path, testLogger())
	require.NoError(t, err)
	defer second.Close()

	var applied int
	require.NoError(t, second.sqlDB.QueryRow("SELECT COUNT(*) FROM "+migrationTable).Scan(&applied))
	assert.Equal(t, 1, applied)

	s, err := second.FindScene(ctx, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestStore_SceneRoundTrip(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	for _, k := range []scene.Key{{SceneID: 1, SubsceneID: 2}, {SceneID: 4, SubsceneID: 1}} {
		original := catalog.Default().Get(k.SceneID, k.SubsceneID)
		require.NoError(t, store.UpsertScene(ctx, original))

		loaded, err := store.FindScene(ctx, k.SceneID, k.SubsceneID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, original.Title(), loaded.Title())
		assert.Equal(t, original.GridConfig, loaded.GridConfig)
		assert.Equal(t, original.Tiles, loaded.Tiles)
		assert.Equal(t, original.Choices, loaded.Choices)
		assert.Equal(t, original.NextScenes, loaded.NextScenes)
		assert.Equal(t, original.AssetPath, loaded.AssetPath)
		assert.True(t, scene.Validate(loaded).OK)
	}

	missing, err := store.FindScene(ctx, 77, 7)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_UpsertReplaces(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	s := &scene.Scene{SceneID: 9, SubsceneID: 1, Metadata: &scene.Metadata{Title: "Draft", BackgroundType: scene.BackgroundVault}}
	require.NoError(t, store.UpsertScene(ctx, s))
	s.Metadata.Title = "Final"
	s.Effects = scene.Effects{scene.EffectAutoAdvanceAfterMs: 1500, scene.EffectNextScene: map[string]any{"scene_id": 9, "subscene_id": 2}}
	require.NoError(t, store.UpsertScene(ctx, s))

	loaded, err := store.FindScene(ctx, 9, 1)
	require.NoError(t, err)
	assert.Equal(t, "Final", loaded.Title())
	aa, ok := loaded.AutoAdvance()
	require.True(t, ok)
	assert.Equal(t, 1500, aa.DelayMs)

	all, err := store.ListScenes(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_ListScenesFiltered(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	n, err := catalog.Default().Seed(ctx, store)
	require.NoError(t, err)

	all, err := store.ListScenes(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, n)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].Key().Less(all[i].Key()))
	}

	dungeon, err := store.ListScenes(ctx, &storage.SceneFilter{BackgroundType: scene.BackgroundDungeon})
	require.NoError(t, err)
	require.Len(t, dungeon, 2)
	assert.Equal(t, 3, dungeon[0].SceneID)

	one, err := store.ListScenes(ctx, &storage.SceneFilter{SceneID: 1, BackgroundType: scene.BackgroundMatrixStatic})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, 2, one[0].SubsceneID)
}

func TestStore_Sessions(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateSession(ctx, session.NewSession("s1", "owner", now)))
	require.NoError(t, store.CreateSession(ctx, session.NewSession("s1", "other", now.Add(time.Hour))))

	s, err := store.FindSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "owner", s.OwnerID)
	assert.True(t, s.Active)
	assert.True(t, s.UpdatedAt.Equal(now))

	zoom := scene.ZoomThen("C4", "", nil, scene.Direct(scene.Key{SceneID: 2, SubsceneID: 2}, "open", scene.Effects{"sound": "clank"}, "vault_opened"))
	require.NoError(t, store.AppendLogEntry(ctx, "s1", session.EntryFromResult(scene.Key{SceneID: 2, SubsceneID: 1}, "C4", zoom, now.Add(time.Minute))))
	require.NoError(t, store.AppendLogEntry(ctx, "s1", session.EntryFromResult(scene.Key{SceneID: 2, SubsceneID: 2}, "A6", scene.NoTransition(scene.Key{SceneID: 2, SubsceneID: 2}), now.Add(30*time.Second))))

	withLog, err := store.FindSessionWithLog(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, withLog.Log, 2)
	assert.Equal(t, "C4", withLog.Log[0].ZoomTarget)
	require.NotNil(t, withLog.Log[0].NextScene)
	assert.Equal(t, "vault_opened", withLog.Log[0].NextScene.NextAction.Echo)
	assert.Equal(t, "", withLog.Log[1].ZoomTarget)
	assert.Nil(t, withLog.Log[1].NextScene)
	// updated_at only moves forward
	assert.True(t, withLog.UpdatedAt.Equal(now.Add(time.Minute)))

	in := session.Summarize("s1", withLog.Log)
	assert.Equal(t, 1, in.ZoomActionCount)
	assert.Equal(t, []string{"2.1", "2.2"}, in.ScenesVisited)
}

func TestStore_AppendUnknownSession(t *testing.T) {
	store := openTempStore(t)
	err := store.AppendLogEntry(context.Background(), "ghost", session.InteractionLogEntry{GridTile: "A1", Timestamp: time.Now()})
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestStore_Retention(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateSession(ctx, session.NewSession("stale", "", now.AddDate(0, 0, -40))))
	require.NoError(t, store.CreateSession(ctx, session.NewSession("playing", "", now.AddDate(0, 0, -40))))
	require.NoError(t, store.CreateSession(ctx, session.NewSession("fresh", "", now.AddDate(0, 0, -3))))
	require.NoError(t, store.AppendLogEntry(ctx, "stale", session.InteractionLogEntry{Scene: 1, Subscene: 1, GridTile: "A1", Timestamp: now.AddDate(0, 0, -40)}))
	for _, id := range []string{"stale", "fresh"} {
		require.NoError(t, store.MarkSessionInactive(ctx, id))
	}
	assert.ErrorIs(t, store.MarkSessionInactive(ctx, "ghost"), storage.ErrSessionNotFound)

	deleted, err := store.DeleteInactiveSessionsOlderThan(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	gone, err := store.FindSession(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, gone)

	var orphaned int
	require.NoError(t, store.sqlDB.QueryRow(`SELECT COUNT(*) FROM interaction_log WHERE session_id = ?`, "stale").Scan(&orphaned))
	assert.Zero(t, orphaned, "log rows cascade with their session")
}

func TestStore_ClosedIsUnavailable(t *testing.T) {
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "scenes.db"), testLogger())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.FindScene(context.Background(), 1, 1)
	assert.ErrorIs(t, err, storage.ErrPersistenceUnavailable)
}

func TestJournal_OverSQLite(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	j := journal.New(store, testLogger())
	first, err := j.GetOrCreateSession(ctx, "s1", "owner")
	require.NoError(t, err)
	second, err := j.GetOrCreateSession(ctx, "s1", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var rows int
	require.NoError(t, store.sqlDB.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&rows))
	assert.Equal(t, 1, rows)

	j.LogInteraction(ctx, "s1", session.InteractionLogEntry{Scene: 1, Subscene: 2, GridTile: "K7", ZoomTarget: "K7"})
	in, err := j.GetInsights(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, in.TotalInteractions)
}

func TestStore_ClaimSessionOwner(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	_, err := store.ClaimSessionOwner(ctx, "ghost", "owner")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	require.NoError(t, store.CreateSession(ctx, session.NewSession("s1", "", time.Now())))

	claimed, err := store.ClaimSessionOwner(ctx, "s1", "owner")
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = store.ClaimSessionOwner(ctx, "s1", "intruder")
	require.NoError(t, err)
	assert.False(t, claimed)

	s, err := store.FindSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "owner", s.OwnerID)
}
