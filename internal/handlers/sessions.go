package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/scene-engine/internal/middleware"
	"github.com/jwebster45206/scene-engine/pkg/engine"
)

// CreateSessionRequest is the body of POST /v1/sessions. Both fields are
// optional; a missing id is minted.
type CreateSessionRequest struct {
	SessionID string `json:"session_id,omitempty"`
	OwnerID   string `json:"owner_id,omitempty"`
}

type SessionHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

func NewSessionHandler(e *engine.Engine, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		engine: e,
		logger: logger,
	}
}

// ServeHTTP routes:
// POST   /v1/sessions               - start (or resume) a session
// GET    /v1/sessions               - active sessions
// GET    /v1/sessions/{id}/insights - journey summary
// DELETE /v1/sessions/{id}          - end a session
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := middleware.FromContext(r.Context(), h.logger)

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	var parts []string
	if path != "" {
		parts = strings.Split(path, "/")
	}

	switch {
	case len(parts) == 0 && r.Method == http.MethodPost:
		h.handleCreate(w, r, log)
	case len(parts) == 0 && r.Method == http.MethodGet:
		writeJSON(w, log, http.StatusOK, h.engine.ListActiveSessions())
	case len(parts) == 0:
		methodNotAllowed(w, log, r, "GET, POST")
	case len(parts) == 2 && parts[1] == "insights":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, log, r, http.MethodGet)
			return
		}
		h.handleInsights(w, r, log, parts[0])
	case len(parts) == 1:
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, log, r, http.MethodDelete)
			return
		}
		h.handleEnd(w, r, log, parts[0])
	default:
		writeError(w, log, http.StatusNotFound, "Unknown sessions route")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("Invalid session request body", "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SessionID = strings.TrimSpace(req.SessionID); req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	s, err := h.engine.StartSession(r.Context(), req.SessionID, req.OwnerID)
	if err != nil {
		log.Error("Failed to start session", "error", err, "session_id", req.SessionID)
		writeError(w, log, statusFor(err), "Failed to start session")
		return
	}
	writeJSON(w, log, http.StatusCreated, s)
}

func (h *SessionHandler) handleInsights(w http.ResponseWriter, r *http.Request, log *slog.Logger, id string) {
	in, err := h.engine.GetSessionInsights(r.Context(), id)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			log.Error("Failed to load insights", "error", err, "session_id", id)
		}
		writeError(w, log, status, "Failed to load session insights")
		return
	}
	writeJSON(w, log, http.StatusOK, in)
}

func (h *SessionHandler) handleEnd(w http.ResponseWriter, r *http.Request, log *slog.Logger, id string) {
	if err := h.engine.EndSession(r.Context(), id); err != nil {
		writeError(w, log, statusFor(err), "Failed to end session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
