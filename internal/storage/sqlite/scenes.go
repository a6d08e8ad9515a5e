package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jwebster45206/scene-engine/pkg/scene"
	"github.com/jwebster45206/scene-engine/pkg/storage"
)

const sceneColumns = `scene_id, subscene_id, metadata, grid_config, tiles, choices, effects, next_scenes, echo_triggers, asset_path`

var errUndecodableScene = errors.New("undecodable scene row")

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScene(row rowScanner) (*scene.Scene, error) {
	var (
		s                                    scene.Scene
		metadata, gridConfig, tiles, choices string
		effects, nextScenes, echoTriggers    string
	)
	if err := row.Scan(&s.SceneID, &s.SubsceneID, &metadata, &gridConfig, &tiles, &choices, &effects, &nextScenes, &echoTriggers, &s.AssetPath); err != nil {
		return nil, err
	}

	columns := []struct {
		name string
		raw  string
		dst  any
	}{
		{"metadata", metadata, &s.Metadata},
		{"grid_config", gridConfig, &s.GridConfig},
		{"tiles", tiles, &s.Tiles},
		{"choices", choices, &s.Choices},
		{"effects", effects, &s.Effects},
		{"next_scenes", nextScenes, &s.NextScenes},
		{"echo_triggers", echoTriggers, &s.EchoTriggers},
	}
	for _, c := range columns {
		if err := json.Unmarshal([]byte(c.raw), c.dst); err != nil {
			return nil, fmt.Errorf("%w: scene %d.%d column %s: %w", errUndecodableScene, s.SceneID, s.SubsceneID, c.name, err)
		}
	}
	return &s, nil
}

func (s *Store) FindScene(ctx context.Context, sceneID, subsceneID int) (*scene.Scene, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+sceneColumns+` FROM scenes WHERE scene_id = ? AND subscene_id = ?`,
		sceneID, subsceneID,
	)
	sc, err := scanScene(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		if errors.Is(err, errUndecodableScene) {
			return nil, err
		}
		return nil, unavailable("load scene", err)
	}
	return sc, nil
}

func (s *Store) UpsertScene(ctx context.Context, sc *scene.Scene) error {
	if sc == nil {
		return errors.New("scene cannot be nil")
	}

	values := make([]any, 0, 7)
	for _, v := range []any{sc.Metadata, sc.GridConfig, sc.Tiles, sc.Choices, sc.Effects, sc.NextScenes, sc.EchoTriggers} {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal scene %s: %w", sc.Key(), err)
		}
		values = append(values, string(data))
	}

	args := append([]any{sc.SceneID, sc.SubsceneID}, values...)
	args = append(args, sc.AssetPath, string(sc.BackgroundType()), toMillis(time.Now()))

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO scenes (`+sceneColumns+`, background_type, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (scene_id, subscene_id) DO UPDATE SET
    metadata = excluded.metadata,
    grid_config = excluded.grid_config,
    tiles = excluded.tiles,
    choices = excluded.choices,
    effects = excluded.effects,
    next_scenes = excluded.next_scenes,
    echo_triggers = excluded.echo_triggers,
    asset_path = excluded.asset_path,
    background_type = excluded.background_type,
    updated_at = excluded.updated_at`, args...)
	if err != nil {
		s.logger.Error("Failed to save scene", "scene", sc.Key().String(), "error", err)
		return unavailable("save scene", err)
	}
	return nil
}

func (s *Store) ListScenes(ctx context.Context, filter *storage.SceneFilter) ([]*scene.Scene, error) {
	query := `SELECT ` + sceneColumns + ` FROM scenes`
	var (
		where []string
		args  []any
	)
	if filter != nil && filter.SceneID != 0 {
		where = append(where, "scene_id = ?")
		args = append(args, filter.SceneID)
	}
	if filter != nil && filter.BackgroundType != "" {
		where = append(where, "background_type = ?")
		args = append(args, string(filter.BackgroundType))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY scene_id, subscene_id"

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("list scenes", err)
	}
	defer rows.Close()

	scenes := []*scene.Scene{}
	for rows.Next() {
		sc, err := scanScene(rows)
		if err != nil {
			s.logger.Warn("Skipping unreadable scene", "error", err)
			continue
		}
		scenes = append(scenes, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list scenes", err)
	}
	return scenes, nil
}
