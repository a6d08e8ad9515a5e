package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/scene-engine/internal/logger"
	"github.com/jwebster45206/scene-engine/pkg/session"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeTransitionResolved EventType = "transition.resolved"
	EventTypeSessionEnded       EventType = "session.ended"
)

// Event is the envelope published on a session channel.
type Event struct {
	Type      EventType      `json:"type"`
	RequestID string         `json:"request_id,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Channel names the pub/sub channel for one session.
func Channel(sessionID string) string {
	return fmt.Sprintf("session-events:%s", sessionID)
}

// Broadcaster publishes session events to Redis Pub/Sub for SSE distribution.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishTransitionResolved announces a journaled click.
func (b *Broadcaster) PublishTransitionResolved(ctx context.Context, sessionID string, entry session.InteractionLogEntry) error {
	data := map[string]any{
		"scene":     entry.Scene,
		"subscene":  entry.Subscene,
		"grid_tile": entry.GridTile,
		"timestamp": entry.Timestamp,
	}
	if entry.ZoomTarget != "" {
		data["zoom_target"] = entry.ZoomTarget
	}
	if entry.NextScene != nil {
		data["next_scene"] = entry.NextScene
	}
	return b.publish(ctx, sessionID, Event{
		Type: EventTypeTransitionResolved,
		Data: data,
	})
}

// PublishSessionEnded announces that a session was closed.
func (b *Broadcaster) PublishSessionEnded(ctx context.Context, sessionID string) error {
	return b.publish(ctx, sessionID, Event{
		Type: EventTypeSessionEnded,
		Data: map[string]any{"active": false},
	})
}

// Subscribe opens a subscription to one session's channel. The caller
// closes it.
func (b *Broadcaster) Subscribe(ctx context.Context, sessionID string) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, Channel(sessionID))
}

func (b *Broadcaster) publish(ctx context.Context, sessionID string, event Event) error {
	event.SessionID = sessionID
	event.RequestID = logger.RequestIDFromContext(ctx)
	channel := Channel(sessionID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"request_id", event.RequestID,
	)

	return nil
}
