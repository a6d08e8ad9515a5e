package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/jwebster45206/scene-engine/internal/middleware"
	"github.com/jwebster45206/scene-engine/pkg/engine"
	"github.com/jwebster45206/scene-engine/pkg/scene"
)

// AutoAdvanceResponse answers the auto-advance query for one scene.
type AutoAdvanceResponse struct {
	SceneID     int                `json:"scene_id"`
	SubsceneID  int                `json:"subscene_id"`
	AutoAdvance bool               `json:"auto_advance"`
	Config      *scene.AutoAdvance `json:"config,omitempty"`
}

type SceneHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

func NewSceneHandler(e *engine.Engine, logger *slog.Logger) *SceneHandler {
	return &SceneHandler{
		engine: e,
		logger: logger,
	}
}

// ServeHTTP routes:
// GET /v1/scenes                              - list scenes (?background_type=vault)
// GET /v1/scenes/{sid}/{ssid}                 - one scene
// GET /v1/scenes/{sid}/{ssid}/auto-advance    - auto-advance timer
func (h *SceneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := middleware.FromContext(r.Context(), h.logger)
	if r.Method != http.MethodGet {
		methodNotAllowed(w, log, r, http.MethodGet)
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/scenes"), "/")
	if path == "" {
		h.handleList(w, r, log)
		return
	}

	parts := strings.Split(path, "/")
	if len(parts) < 2 || len(parts) > 3 || (len(parts) == 3 && parts[2] != "auto-advance") {
		writeError(w, log, http.StatusNotFound, "Invalid path. Expected /v1/scenes/{scene_id}/{subscene_id}[/auto-advance]")
		return
	}
	sid, err1 := strconv.Atoi(parts[0])
	ssid, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		writeError(w, log, http.StatusBadRequest, "Scene and subscene ids must be integers")
		return
	}

	if len(parts) == 3 {
		h.handleAutoAdvance(w, r, log, sid, ssid)
		return
	}

	s, err := h.engine.GetSceneData(r.Context(), sid, ssid)
	if err != nil {
		writeError(w, log, statusFor(err), "Scene not found")
		return
	}
	writeJSON(w, log, http.StatusOK, s)
}

func (h *SceneHandler) handleList(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	scenes, err := h.engine.ListAllScenes(r.Context())
	if err != nil {
		log.Error("Failed to list scenes", "error", err)
		writeError(w, log, statusFor(err), "Failed to list scenes")
		return
	}

	if bg := scene.BackgroundType(r.URL.Query().Get("background_type")); bg != "" {
		if !bg.Valid() {
			writeError(w, log, http.StatusBadRequest, "Unknown background_type")
			return
		}
		filtered := make([]*scene.Scene, 0, len(scenes))
		for _, s := range scenes {
			if s.BackgroundType() == bg {
				filtered = append(filtered, s)
			}
		}
		scenes = filtered
	}
	writeJSON(w, log, http.StatusOK, scenes)
}

func (h *SceneHandler) handleAutoAdvance(w http.ResponseWriter, r *http.Request, log *slog.Logger, sid, ssid int) {
	if _, err := h.engine.GetSceneData(r.Context(), sid, ssid); err != nil {
		writeError(w, log, statusFor(err), "Scene not found")
		return
	}

	resp := AutoAdvanceResponse{
		SceneID:     sid,
		SubsceneID:  ssid,
		AutoAdvance: h.engine.HasAutoAdvance(r.Context(), sid, ssid),
	}
	if cfg, ok := h.engine.GetAutoAdvanceConfig(r.Context(), sid, ssid); ok {
		resp.Config = &cfg
	}
	writeJSON(w, log, http.StatusOK, resp)
}
