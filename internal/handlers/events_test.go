package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/scene-engine/internal/middleware"
	"github.com/jwebster45206/scene-engine/internal/services/events"
	"github.com/jwebster45206/scene-engine/pkg/engine"
	"github.com/jwebster45206/scene-engine/pkg/storage"
)

type sseEvent struct {
	name string
	data string
}

// nextEvent reads lines until a complete event has arrived.
func nextEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		case line == "" && ev.name != "":
			return ev
		}
	}
}

func TestEventsHandler_StreamsTransitions(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	broadcaster := events.NewBroadcaster(client, testLogger())
	e := engine.New(storage.NewMockStorage(), testLogger(), engine.WithPublisher(broadcaster))

	srv := httptest.NewServer(middleware.Logger(NewEventsHandler(broadcaster, testLogger())))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/events/sessions/s1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	connected := nextEvent(t, reader)
	assert.Equal(t, "connected", connected.name)
	assert.Contains(t, connected.data, `"session_id":"s1"`)

	_, err = e.HandleTileClick(ctx, engine.Click{SessionID: "s1", SceneID: 1, SubsceneID: 2, TileID: "K7"})
	require.NoError(t, err)

	ev := nextEvent(t, reader)
	assert.Equal(t, string(events.EventTypeTransitionResolved), ev.name)
	var payload events.Event
	require.NoError(t, json.Unmarshal([]byte(ev.data), &payload))
	assert.Equal(t, "s1", payload.SessionID)
	assert.Equal(t, "K7", payload.Data["grid_tile"])

	require.NoError(t, e.EndSession(ctx, "s1"))
	ended := nextEvent(t, reader)
	assert.Equal(t, string(events.EventTypeSessionEnded), ended.name)
}

func TestEventsHandler_BadRequests(t *testing.T) {
	h := NewEventsHandler(nil, testLogger())

	rr := serve(h, http.MethodGet, "/v1/events/sessions/", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(h, http.MethodGet, "/v1/events/games/abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(h, http.MethodPost, "/v1/events/sessions/abc", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

