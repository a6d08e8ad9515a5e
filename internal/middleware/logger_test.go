package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLogger_GeneratesRequestID(t *testing.T) {
	buf := captureDefault(t)

	var scoped *slog.Logger
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped = FromContext(r.Context(), nil)
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/scenes", nil))

	id := rr.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	require.NotNil(t, scoped)
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Contains(t, buf.String(), "request_id="+id)
	assert.Contains(t, buf.String(), "status=418")
}

func TestLogger_KeepsIncomingRequestID(t *testing.T) {
	captureDefault(t)

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestFromContext_Fallback(t *testing.T) {
	fallback := slog.Default()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Same(t, fallback, FromContext(req.Context(), fallback))
}
