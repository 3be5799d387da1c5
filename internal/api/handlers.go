package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/hero-quest/internal/game"
	"github.com/terra-clan/hero-quest/internal/models"
	"github.com/terra-clan/hero-quest/internal/story"
	"github.com/terra-clan/hero-quest/internal/unlock"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondGameError maps game errors to HTTP responses
func respondGameError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, game.ErrInvalidPlayerID):
		respondError(w, http.StatusBadRequest, "invalid_player_id", err.Error())
	case errors.Is(err, game.ErrMissionNotFound):
		respondError(w, http.StatusNotFound, "mission_not_found", err.Error())
	case errors.Is(err, story.ErrUnknownNode):
		respondError(w, http.StatusNotFound, "node_not_found", err.Error())
	case errors.Is(err, story.ErrUnknownChoice):
		respondError(w, http.StatusNotFound, "choice_not_found", err.Error())
	case errors.Is(err, game.ErrMissionLocked):
		respondError(w, http.StatusConflict, "mission_locked", err.Error())
	case errors.Is(err, game.ErrDialogNotOpen):
		respondError(w, http.StatusConflict, "dialog_not_open", err.Error())
	case errors.Is(err, story.ErrNotAwaitingChoice):
		respondError(w, http.StatusConflict, "still_revealing", err.Error())
	case errors.Is(err, story.ErrShortcutUnavailable):
		respondError(w, http.StatusConflict, "shortcut_unavailable", err.Error())
	case errors.Is(err, unlock.ErrReflectionTooShort):
		respondError(w, http.StatusUnprocessableEntity, "reflection_too_short", err.Error())
	case errors.Is(err, game.ErrIncompleteAssessment):
		respondError(w, http.StatusUnprocessableEntity, "incomplete_assessment", err.Error())
	default:
		slog.Error("failed to "+action, "error", err, "player_id", PlayerIDFromContext(r.Context()))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to "+action)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", name+" must be an integer")
		return 0, false
	}
	return v, true
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.game.Ping(r.Context()); err != nil {
		slog.Warn("readiness check failed", "error", err)
		respondError(w, http.StatusServiceUnavailable, "not_ready", "storage not ready")
		return
	}

	checks := map[string]string{}
	for name, err := range s.registry.HealthCheckAll(r.Context()) {
		if err != nil {
			slog.Warn("service unhealthy", "service", name, "error", err)
			respondError(w, http.StatusServiceUnavailable, "not_ready", name+" not ready")
			return
		}
		checks[name] = "ok"
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ready",
		"services":     checks,
		"open_dialogs": s.game.OpenDialogs(),
	})
}

// Player handlers

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	id, state, err := s.game.CreatePlayer(r.Context())
	if err != nil {
		respondGameError(w, r, err, "create player")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"player_id": id,
		"state":     state.View(),
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.game.Profile(r.Context(), PlayerIDFromContext(r.Context()))
	if err != nil {
		respondGameError(w, r, err, "get profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleResetPlayer(w http.ResponseWriter, r *http.Request) {
	if err := s.game.Reset(r.Context(), PlayerIDFromContext(r.Context())); err != nil {
		respondGameError(w, r, err, "reset progress")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "progress reset",
	})
}

func (s *Server) handleCompleteQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.QuizRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.game.CompleteQuiz(r.Context(), PlayerIDFromContext(r.Context()), req.Answers)
	if err != nil {
		respondGameError(w, r, err, "complete quiz")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListPlayerMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := s.game.Missions(r.Context(), PlayerIDFromContext(r.Context()))
	if err != nil {
		respondGameError(w, r, err, "list missions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"missions": missions,
		"total":    len(missions),
	})
}

func (s *Server) handleCompleteMission(w http.ResponseWriter, r *http.Request) {
	missionID, ok := intParam(w, r, "missionID")
	if !ok {
		return
	}

	var req models.CompleteMissionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.game.CompleteMission(r.Context(), PlayerIDFromContext(r.Context()), missionID, req.Input)
	if err != nil {
		respondGameError(w, r, err, "complete mission")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListPlayerBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := s.game.Badges(r.Context(), PlayerIDFromContext(r.Context()))
	if err != nil {
		respondGameError(w, r, err, "list badges")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"badges": badges,
		"total":  len(badges),
	})
}

func (s *Server) handleCompleteAssessment(w http.ResponseWriter, r *http.Request) {
	var req models.AssessmentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.game.CompleteAssessment(r.Context(), PlayerIDFromContext(r.Context()), req.Answers)
	if err != nil {
		respondGameError(w, r, err, "complete assessment")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleProgressStory(w http.ResponseWriter, r *http.Request) {
	var req models.ProgressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Points != nil && *req.Points < 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "points must not be negative")
		return
	}

	state, err := s.game.ProgressStory(r.Context(), PlayerIDFromContext(r.Context()), req)
	if err != nil {
		respondGameError(w, r, err, "progress story")
		return
	}
	respondJSON(w, http.StatusOK, state.View())
}
