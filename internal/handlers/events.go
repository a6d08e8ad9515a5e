package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/scene-engine/internal/middleware"
	"github.com/jwebster45206/scene-engine/internal/services/events"
)

const keepaliveInterval = 30 * time.Second

// Subscriber opens a pub/sub subscription for one session.
type Subscriber interface {
	Subscribe(ctx context.Context, sessionID string) *redis.PubSub
}

// EventsHandler streams session events over Server-Sent Events.
type EventsHandler struct {
	subscriber Subscriber
	logger     *slog.Logger
}

func NewEventsHandler(subscriber Subscriber, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		subscriber: subscriber,
		logger:     logger,
	}
}

// ServeHTTP handles GET /v1/events/sessions/{sessionID}
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := middleware.FromContext(r.Context(), h.logger)
	if r.Method != http.MethodGet {
		methodNotAllowed(w, log, r, http.MethodGet)
		return
	}

	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) != 4 || pathParts[0] != "v1" || pathParts[1] != "events" || pathParts[2] != "sessions" || pathParts[3] == "" {
		writeError(w, log, http.StatusBadRequest, "Invalid path. Expected /v1/events/sessions/{sessionID}")
		return
	}
	sessionID := pathParts[3]

	pubsub := h.subscriber.Subscribe(r.Context(), sessionID)
	defer func() {
		if err := pubsub.Close(); err != nil {
			log.Error("Failed to close pubsub", "error", err)
		}
	}()
	// Wait for the subscription to be confirmed so no event published after
	// "connected" is missed.
	if _, err := pubsub.Receive(r.Context()); err != nil {
		log.Error("Failed to subscribe to session events", "error", err, "session_id", sessionID)
		writeError(w, log, http.StatusServiceUnavailable, "Event stream unavailable")
		return
	}

	log.Info("SSE connection established",
		"session_id", sessionID,
		"remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)

	msgChan := pubsub.Channel()

	keepaliveTicker := time.NewTicker(keepaliveInterval)
	defer keepaliveTicker.Stop()

	h.sendSSE(w, log, "connected", map[string]any{
		"session_id": sessionID,
		"message":    "Connected to event stream",
	})

	for {
		select {
		case <-r.Context().Done():
			log.Info("SSE client disconnected", "session_id", sessionID)
			return

		case msg, ok := <-msgChan:
			if !ok {
				return
			}
			var event events.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Error("Failed to unmarshal event", "error", err, "payload", msg.Payload)
				continue
			}
			h.sendSSE(w, log, string(event.Type), event)

		case <-keepaliveTicker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				log.Error("Failed to write keepalive", "error", err)
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

// sendSSE sends a Server-Sent Event to the client
func (h *EventsHandler) sendSSE(w http.ResponseWriter, log *slog.Logger, eventType string, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		log.Error("Failed to marshal SSE data", "error", err)
		return
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, dataJSON); err != nil {
		log.Error("Failed to write event", "error", err)
		return
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
