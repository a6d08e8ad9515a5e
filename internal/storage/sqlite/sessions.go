package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jwebster45206/scene-engine/pkg/scene"
	"github.com/jwebster45206/scene-engine/pkg/session"
	"github.com/jwebster45206/scene-engine/pkg/storage"
)

func (s *Store) FindSession(ctx context.Context, id string) (*session.Session, error) {
	var (
		sess                 session.Session
		active               int
		createdAt, updatedAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, owner_id, active, created_at, updated_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.OwnerID, &active, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("load session", err)
	}
	sess.Active = active == 1
	sess.CreatedAt = fromMillis(createdAt)
	sess.UpdatedAt = fromMillis(updatedAt)
	return &sess, nil
}

func (s *Store) CreateSession(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return errors.New("session cannot be nil")
	}
	active := 0
	if sess.Active {
		active = 1
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO sessions (id, owner_id, active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (id) DO NOTHING`,
		sess.ID, sess.OwnerID, active, toMillis(sess.CreatedAt), toMillis(sess.UpdatedAt),
	)
	if err != nil {
		s.logger.Error("Failed to create session", "session_id", sess.ID, "error", err)
		return unavailable("create session", err)
	}
	return nil
}

func (s *Store) AppendLogEntry(ctx context.Context, sessionID string, entry session.InteractionLogEntry) error {
	var zoomTarget, nextScene sql.NullString
	if entry.ZoomTarget != "" {
		zoomTarget = sql.NullString{String: entry.ZoomTarget, Valid: true}
	}
	if entry.NextScene != nil {
		data, err := json.Marshal(entry.NextScene)
		if err != nil {
			return fmt.Errorf("failed to marshal next scene: %w", err)
		}
		nextScene = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin append", err)
	}
	defer tx.Rollback()

	ts := toMillis(entry.Timestamp)
	if _, err := tx.ExecContext(ctx, `
INSERT INTO interaction_log (session_id, scene, subscene, grid_tile, zoom_target, next_scene, timestamp)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, entry.Scene, entry.Subscene, entry.GridTile, zoomTarget, nextScene, ts,
	); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", storage.ErrSessionNotFound, sessionID)
		}
		return unavailable("append log entry", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET updated_at = MAX(updated_at, ?) WHERE id = ?`, ts, sessionID,
	); err != nil {
		return unavailable("touch session", err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit append", err)
	}
	return nil
}

func (s *Store) FindSessionWithLog(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.FindSession(ctx, id)
	if err != nil || sess == nil {
		return sess, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT scene, subscene, grid_tile, zoom_target, next_scene, timestamp
FROM interaction_log WHERE session_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, unavailable("load session log", err)
	}
	defer rows.Close()

	sess.Log = []session.InteractionLogEntry{}
	for rows.Next() {
		var (
			e                     session.InteractionLogEntry
			zoomTarget, nextScene sql.NullString
			ts                    int64
		)
		if err := rows.Scan(&e.Scene, &e.Subscene, &e.GridTile, &zoomTarget, &nextScene, &ts); err != nil {
			return nil, unavailable("scan session log", err)
		}
		e.ZoomTarget = zoomTarget.String
		e.Timestamp = fromMillis(ts)
		if nextScene.Valid {
			var r scene.TransitionResult
			if err := json.Unmarshal([]byte(nextScene.String), &r); err != nil {
				s.logger.Warn("Dropping unreadable transition snapshot", "session_id", id, "error", err)
			} else {
				e.NextScene = &r
			}
		}
		sess.Log = append(sess.Log, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("load session log", err)
	}
	return sess, nil
}

func (s *Store) ClaimSessionOwner(ctx context.Context, id, ownerID string) (bool, error) {
	if ownerID != "" {
		res, err := s.sqlDB.ExecContext(ctx,
			`UPDATE sessions SET owner_id = ? WHERE id = ? AND owner_id = ''`, ownerID, id,
		)
		if err != nil {
			return false, unavailable("claim session owner", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, unavailable("claim session owner", err)
		}
		if n > 0 {
			return true, nil
		}
	}

	var exists int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("%w: %s", storage.ErrSessionNotFound, id)
	}
	if err != nil {
		return false, unavailable("load session", err)
	}
	return false, nil
}

func (s *Store) MarkSessionInactive(ctx context.Context, id string) error {
	res, err := s.sqlDB.ExecContext(ctx, `UPDATE sessions SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return unavailable("end session", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("end session", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrSessionNotFound, id)
	}
	return nil
}

func (s *Store) DeleteInactiveSessionsOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM sessions WHERE active = 0 AND updated_at < ?`, toMillis(cutoff),
	)
	if err != nil {
		return 0, unavailable("delete sessions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable("delete sessions", err)
	}
	if n > 0 {
		s.logger.Info("Deleted inactive sessions", "count", n, "cutoff", cutoff)
	}
	return int(n), nil
}
