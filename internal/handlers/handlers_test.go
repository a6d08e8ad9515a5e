package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/scene-engine/pkg/engine"
	"github.com/jwebster45206/scene-engine/pkg/scene"
	"github.com/jwebster45206/scene-engine/pkg/session"
	"github.com/jwebster45206/scene-engine/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func newTestEngine(t *testing.T) (*engine.Engine, *storage.MockStorage) {
	t.Helper()
	store := storage.NewMockStorage()
	return engine.New(store, testLogger()), store
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		storeErr       error
		expectedStatus int
		expectedHealth string
		expectedStore  string
	}{
		{name: "healthy", expectedStatus: http.StatusOK, expectedHealth: "healthy", expectedStore: "healthy"},
		{name: "store down", storeErr: errors.New("connection refused"), expectedStatus: http.StatusServiceUnavailable, expectedHealth: "degraded", expectedStore: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMockStorage()
			store.SetPingError(tt.storeErr)

			rr := serve(NewHealthHandler(store, nil, testLogger()), http.MethodGet, "/health", "")
			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			resp := decode[HealthResponse](t, rr)
			assert.Equal(t, tt.expectedHealth, resp.Status)
			assert.Equal(t, "scene-engine", resp.Service)
			assert.Equal(t, tt.expectedStore, resp.Components["store"])
			assert.NotContains(t, resp.Components, "events")
			assert.False(t, resp.Timestamp.IsZero())
		})
	}
}

func TestSceneHandler_List(t *testing.T) {
	e, _ := newTestEngine(t)
	h := NewSceneHandler(e, testLogger())

	rr := serve(h, http.MethodGet, "/v1/scenes", "")
	require.Equal(t, http.StatusOK, rr.Code)
	all := decode[[]scene.Scene](t, rr)
	assert.Len(t, all, e.Catalog().Len())

	rr = serve(h, http.MethodGet, "/v1/scenes?background_type=vault", "")
	require.Equal(t, http.StatusOK, rr.Code)
	vault := decode[[]scene.Scene](t, rr)
	require.Len(t, vault, 2)
	for _, s := range vault {
		assert.Equal(t, scene.BackgroundVault, s.BackgroundType())
	}

	rr = serve(h, http.MethodGet, "/v1/scenes?background_type=lava", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Filtering leaves later listings whole.
	rr = serve(h, http.MethodGet, "/v1/scenes", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, all, decode[[]scene.Scene](t, rr))
}

func TestSceneHandler_Get(t *testing.T) {
	e, _ := newTestEngine(t)
	h := NewSceneHandler(e, testLogger())

	tests := []struct {
		name   string
		target string
		status int
	}{
		{name: "known", target: "/v1/scenes/1/2", status: http.StatusOK},
		{name: "unknown", target: "/v1/scenes/99/99", status: http.StatusNotFound},
		{name: "not numeric", target: "/v1/scenes/one/2", status: http.StatusBadRequest},
		{name: "bad suffix", target: "/v1/scenes/1/2/choices", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(h, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}

	rr := serve(h, http.MethodGet, "/v1/scenes/1/2", "")
	s := decode[scene.Scene](t, rr)
	assert.Equal(t, "Follow the White Rabbit", s.Title())

	rr = serve(h, http.MethodPost, "/v1/scenes", "{}")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestSceneHandler_AutoAdvance(t *testing.T) {
	e, _ := newTestEngine(t)
	h := NewSceneHandler(e, testLogger())

	rr := serve(h, http.MethodGet, "/v1/scenes/5/1/auto-advance", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[AutoAdvanceResponse](t, rr)
	assert.True(t, resp.AutoAdvance)
	require.NotNil(t, resp.Config)
	assert.Equal(t, 12000, resp.Config.DelayMs)
	assert.Equal(t, scene.Key{SceneID: 1, SubsceneID: 1}, resp.Config.NextScene)

	rr = serve(h, http.MethodGet, "/v1/scenes/2/1/auto-advance", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp = decode[AutoAdvanceResponse](t, rr)
	assert.False(t, resp.AutoAdvance)
	assert.Nil(t, resp.Config)

	rr = serve(h, http.MethodGet, "/v1/scenes/99/1/auto-advance", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTransitionHandler(t *testing.T) {
	e, store := newTestEngine(t)
	h := NewTransitionHandler(e, testLogger())

	rr := serve(h, http.MethodPost, "/v1/transitions", `{"session_id":"s1","scene_id":1,"subscene_id":2,"tile_id":"K7","action":"click"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	result := decode[scene.TransitionResult](t, rr)
	assert.Equal(t, "K7", result.ZoomTo)
	assert.Equal(t, scene.Key{SceneID: 2, SubsceneID: 1}, result.Target())
	assert.Equal(t, 1, store.SessionCount())

	rr = serve(h, http.MethodPost, "/v1/transitions", `{"scene_id":99,"subscene_id":99,"tile_id":"A1"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[scene.TransitionResult](t, rr).IsNoOp())
}

func TestTransitionHandler_Errors(t *testing.T) {
	e, _ := newTestEngine(t)
	h := NewTransitionHandler(e, testLogger())

	rr := serve(h, http.MethodPost, "/v1/transitions", `{"scene_id":1,"subscene_id":2,"tile_id":"7A"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[ErrorResponse](t, rr).Error, "7A")

	rr = serve(h, http.MethodPost, "/v1/transitions", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(h, http.MethodGet, "/v1/transitions", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
}

func TestSessionHandler_Lifecycle(t *testing.T) {
	e, _ := newTestEngine(t)
	h := NewSessionHandler(e, testLogger())
	clicks := NewTransitionHandler(e, testLogger())

	rr := serve(h, http.MethodPost, "/v1/sessions", `{"session_id":"s1","owner_id":"alice"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode[session.Session](t, rr)
	assert.Equal(t, "s1", created.ID)
	assert.True(t, created.Active)

	rr = serve(h, http.MethodPost, "/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rr.Code)
	minted := decode[session.Session](t, rr)
	assert.NotEmpty(t, minted.ID)

	for _, body := range []string{
		`{"session_id":"s1","scene_id":1,"subscene_id":2,"tile_id":"K7"}`,
		`{"session_id":"s1","scene_id":2,"subscene_id":1,"tile_id":"A1"}`,
	} {
		require.Equal(t, http.StatusOK, serve(clicks, http.MethodPost, "/v1/transitions", body).Code)
	}

	rr = serve(h, http.MethodGet, "/v1/sessions", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]session.Session](t, rr), 2)

	rr = serve(h, http.MethodGet, "/v1/sessions/s1/insights", "")
	require.Equal(t, http.StatusOK, rr.Code)
	in := decode[session.Insights](t, rr)
	assert.Equal(t, 2, in.TotalInteractions)
	assert.Equal(t, 1, in.ZoomActionCount)
	assert.Equal(t, []string{"1.2", "2.1"}, in.ScenesVisited)

	rr = serve(h, http.MethodDelete, "/v1/sessions/s1", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = serve(h, http.MethodGet, "/v1/sessions", "")
	active := decode[[]session.Session](t, rr)
	require.Len(t, active, 1)
	assert.Equal(t, minted.ID, active[0].ID)
}

func TestSessionHandler_Errors(t *testing.T) {
	e, store := newTestEngine(t)
	h := NewSessionHandler(e, testLogger())

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
	}{
		{name: "unknown insights", method: http.MethodGet, target: "/v1/sessions/ghost/insights", status: http.StatusNotFound},
		{name: "unknown end", method: http.MethodDelete, target: "/v1/sessions/ghost", status: http.StatusNotFound},
		{name: "bad body", method: http.MethodPost, target: "/v1/sessions", body: "[", status: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodPut, target: "/v1/sessions", status: http.StatusMethodNotAllowed},
		{name: "unknown route", method: http.MethodGet, target: "/v1/sessions/s1/log/1", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(h, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}

	store.SetFailure(errors.New("offline"))
	rr := serve(h, http.MethodPost, "/v1/sessions", `{"session_id":"s9"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestWriteJSON_EncodesBody(t *testing.T) {
	var buf bytes.Buffer
	rr := httptest.NewRecorder()
	writeJSON(rr, slog.New(slog.NewTextHandler(&buf, nil)), http.StatusAccepted, map[string]int{"n": 1})
	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.JSONEq(t, `{"n":1}`, rr.Body.String())
	assert.Empty(t, buf.String())
}
