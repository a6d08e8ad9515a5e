package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/scene-engine/pkg/session"
	"github.com/jwebster45206/scene-engine/pkg/storage"
)

// Session operations (Redis-backed)

func sessionKey(id string) string    { return sessionKeyPrefix + id }
func sessionLogKey(id string) string { return sessionLogKeyPrefix + id }

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeSession(fields map[string]string) (*session.Session, error) {
	s := &session.Session{
		ID:      fields["id"],
		OwnerID: fields["owner_id"],
		Active:  fields["active"] == "1",
	}
	var err error
	if s.CreatedAt, err = time.Parse(time.RFC3339Nano, fields["created_at"]); err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339Nano, fields["updated_at"]); err != nil {
		return nil, fmt.Errorf("invalid updated_at: %w", err)
	}
	return s, nil
}

func (r *RedisStorage) FindSession(ctx context.Context, id string) (*session.Session, error) {
	fields, err := r.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		r.logger.Error("Failed to load session", "session_id", id, "error", err)
		return nil, unavailable("load session", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	if fields["created_at"] == "" {
		// Left behind by an interrupted create; CreateSession repairs it.
		r.logger.Warn("Ignoring incomplete session record", "session_id", id)
		return nil, nil
	}
	s, err := decodeSession(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return s, nil
}

// maxTxRetries bounds optimistic-lock retries on a watched session key.
const maxTxRetries = 5

// CreateSession writes every field of a new session in one transaction
// guarded by WATCH. A record without created_at is treated as absent and
// overwritten.
func (r *RedisStorage) CreateSession(ctx context.Context, s *session.Session) error {
	if s == nil {
		return errors.New("session cannot be nil")
	}

	key := sessionKey(s.ID)
	active := "0"
	if s.Active {
		active = "1"
	}

	create := func(tx *redis.Tx) error {
		vals, err := tx.HMGet(ctx, key, "created_at", "owner_id").Result()
		if err != nil {
			return err
		}
		if created, _ := vals[0].(string); created != "" {
			return nil
		}
		ownerID := s.OwnerID
		if existing, _ := vals[1].(string); ownerID == "" {
			ownerID = existing
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key,
				"id", s.ID,
				"owner_id", ownerID,
				"active", active,
				"created_at", encodeTime(s.CreatedAt),
				"updated_at", encodeTime(s.UpdatedAt),
			)
			pipe.ZAdd(ctx, sessionsUpdatedKey, redis.Z{Score: float64(s.UpdatedAt.UnixMilli()), Member: s.ID})
			return nil
		})
		return err
	}

	if err := r.watchSession(ctx, key, create); err != nil {
		r.logger.Error("Failed to create session", "session_id", s.ID, "error", err)
		return unavailable("create session", err)
	}
	return nil
}

// ClaimSessionOwner sets the owner of a session that has none yet.
func (r *RedisStorage) ClaimSessionOwner(ctx context.Context, id, ownerID string) (bool, error) {
	key := sessionKey(id)
	claimed := false
	missing := false

	claim := func(tx *redis.Tx) error {
		claimed, missing = false, false
		vals, err := tx.HMGet(ctx, key, "created_at", "owner_id").Result()
		if err != nil {
			return err
		}
		if created, _ := vals[0].(string); created == "" {
			missing = true
			return nil
		}
		if current, _ := vals[1].(string); current != "" || ownerID == "" {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, "owner_id", ownerID)
			return nil
		})
		claimed = err == nil
		return err
	}

	if err := r.watchSession(ctx, key, claim); err != nil {
		return false, unavailable("claim session owner", err)
	}
	if missing {
		return false, fmt.Errorf("%w: %s", storage.ErrSessionNotFound, id)
	}
	return claimed, nil
}

// watchSession runs fn under WATCH key, retrying when another client
// modifies the key before EXEC.
func (r *RedisStorage) watchSession(ctx context.Context, key string, fn func(*redis.Tx) error) error {
	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = r.client.Watch(ctx, fn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func (r *RedisStorage) AppendLogEntry(ctx context.Context, sessionID string, entry session.InteractionLogEntry) error {
	key := sessionKey(sessionID)
	updatedRaw, err := r.client.HGet(ctx, key, "updated_at").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", storage.ErrSessionNotFound, sessionID)
		}
		return unavailable("load session", err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	updatedAt, _ := time.Parse(time.RFC3339Nano, updatedRaw)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, sessionLogKey(sessionID), data)
		if entry.Timestamp.After(updatedAt) {
			pipe.HSet(ctx, key, "updated_at", encodeTime(entry.Timestamp))
			pipe.ZAdd(ctx, sessionsUpdatedKey, redis.Z{Score: float64(entry.Timestamp.UnixMilli()), Member: sessionID})
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to append log entry", "session_id", sessionID, "error", err)
		return unavailable("append log entry", err)
	}
	return nil
}

func (r *RedisStorage) FindSessionWithLog(ctx context.Context, id string) (*session.Session, error) {
	s, err := r.FindSession(ctx, id)
	if err != nil || s == nil {
		return s, err
	}

	raw, err := r.client.LRange(ctx, sessionLogKey(id), 0, -1).Result()
	if err != nil {
		return nil, unavailable("load session log", err)
	}
	s.Log = make([]session.InteractionLogEntry, 0, len(raw))
	for i, item := range raw {
		var e session.InteractionLogEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			r.logger.Warn("Skipping unreadable log entry", "session_id", id, "index", i, "error", err)
			continue
		}
		s.Log = append(s.Log, e)
	}
	return s, nil
}

func (r *RedisStorage) MarkSessionInactive(ctx context.Context, id string) error {
	key := sessionKey(id)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return unavailable("load session", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", storage.ErrSessionNotFound, id)
	}
	if err := r.client.HSet(ctx, key, "active", "0").Err(); err != nil {
		return unavailable("end session", err)
	}
	return nil
}

func (r *RedisStorage) DeleteInactiveSessionsOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	ids, err := r.client.ZRangeByScore(ctx, sessionsUpdatedKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, unavailable("list stale sessions", err)
	}

	deleted := 0
	for _, id := range ids {
		active, err := r.client.HGet(ctx, sessionKey(id), "active").Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return deleted, unavailable("load session", err)
		}
		if active == "1" {
			continue
		}

		_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, sessionKey(id), sessionLogKey(id))
			pipe.ZRem(ctx, sessionsUpdatedKey, id)
			return nil
		})
		if err != nil {
			return deleted, unavailable("delete session", err)
		}
		deleted++
	}

	if deleted > 0 {
		r.logger.Info("Deleted inactive sessions", "count", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}
