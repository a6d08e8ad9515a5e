package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/scene-engine/pkg/scene"
	"github.com/jwebster45206/scene-engine/pkg/storage"
)

// Scene operations (Redis-backed)

func sceneKey(sceneID, subsceneID int) string {
	return fmt.Sprintf("%s%d:%d", sceneKeyPrefix, sceneID, subsceneID)
}

// sceneScore orders the scenes index by scene then subscene.
func sceneScore(k scene.Key) float64 {
	return float64(k.SceneID)*1_000_000 + float64(k.SubsceneID)
}

func (r *RedisStorage) FindScene(ctx context.Context, sceneID, subsceneID int) (*scene.Scene, error) {
	key := sceneKey(sceneID, subsceneID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.logger.Error("Failed to load scene", "key", key, "error", err)
		return nil, unavailable("load scene", err)
	}

	var s scene.Scene
	if err := json.Unmarshal(data, &s); err != nil {
		r.logger.Error("Failed to unmarshal scene", "key", key, "error", err)
		return nil, fmt.Errorf("failed to unmarshal scene %s: %w", key, err)
	}
	return &s, nil
}

func (r *RedisStorage) UpsertScene(ctx context.Context, s *scene.Scene) error {
	if s == nil {
		return errors.New("scene cannot be nil")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}

	key := sceneKey(s.SceneID, s.SubsceneID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, 0)
		pipe.ZAdd(ctx, sceneIndexKey, redis.Z{Score: sceneScore(s.Key()), Member: key})
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save scene", "key", key, "error", err)
		return unavailable("save scene", err)
	}
	return nil
}

func (r *RedisStorage) ListScenes(ctx context.Context, filter *storage.SceneFilter) ([]*scene.Scene, error) {
	keys, err := r.client.ZRange(ctx, sceneIndexKey, 0, -1).Result()
	if err != nil {
		return nil, unavailable("list scenes", err)
	}
	if len(keys) == 0 {
		return []*scene.Scene{}, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, unavailable("load scenes", err)
	}

	scenes := make([]*scene.Scene, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Indexed but deleted out from under us.
			continue
		}
		var s scene.Scene
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			r.logger.Warn("Skipping unreadable scene", "key", keys[i], "error", err)
			continue
		}
		if filter.Matches(&s) {
			scenes = append(scenes, &s)
		}
	}
	return scenes, nil
}
