package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/scene-engine/pkg/engine"
	"github.com/jwebster45206/scene-engine/pkg/grid"
	"github.com/jwebster45206/scene-engine/pkg/journal"
	"github.com/jwebster45206/scene-engine/pkg/storage"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, status int, msg string) {
	writeJSON(w, log, status, ErrorResponse{Error: msg})
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, grid.ErrMalformedTileID), errors.Is(err, journal.ErrEmptySessionID):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrSessionNotFound), errors.Is(err, engine.ErrSceneNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrPersistenceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func methodNotAllowed(w http.ResponseWriter, log *slog.Logger, r *http.Request, allowed string) {
	log.Warn("Method not allowed", "method", r.Method, "path", r.URL.Path)
	w.Header().Set("Allow", allowed)
	writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: "+allowed)
}
