package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/scene-engine/internal/middleware"
	"github.com/jwebster45206/scene-engine/pkg/engine"
)

type TransitionHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

func NewTransitionHandler(e *engine.Engine, logger *slog.Logger) *TransitionHandler {
	return &TransitionHandler{
		engine: e,
		logger: logger,
	}
}

// ServeHTTP handles POST /v1/transitions with an engine.Click body.
func (h *TransitionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := middleware.FromContext(r.Context(), h.logger)
	if r.Method != http.MethodPost {
		methodNotAllowed(w, log, r, http.MethodPost)
		return
	}

	var click engine.Click
	if err := json.NewDecoder(r.Body).Decode(&click); err != nil {
		log.Warn("Invalid transition request body", "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid request body")
		return
	}
	click.TileID = strings.TrimSpace(click.TileID)

	result, err := h.engine.HandleTileClick(r.Context(), click)
	if err != nil {
		writeError(w, log, statusFor(err), err.Error())
		return
	}
	writeJSON(w, log, http.StatusOK, result)
}
