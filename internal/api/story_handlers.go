package api

import (
	"net/http"
)

func (s *Server) handleOpenStory(w http.ResponseWriter, r *http.Request) {
	step, err := s.game.OpenStory(r.Context(), PlayerIDFromContext(r.Context()))
	if err != nil {
		respondGameError(w, r, err, "open story")
		return
	}
	respondJSON(w, http.StatusOK, step)
}

func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	step, err := s.game.Story(r.Context(), PlayerIDFromContext(r.Context()))
	if err != nil {
		respondGameError(w, r, err, "get story")
		return
	}
	respondJSON(w, http.StatusOK, step)
}

func (s *Server) handleRevealStory(w http.ResponseWriter, r *http.Request) {
	step, err := s.game.RevealStory(r.Context(), PlayerIDFromContext(r.Context()))
	if err != nil {
		respondGameError(w, r, err, "reveal story")
		return
	}
	respondJSON(w, http.StatusOK, step)
}

func (s *Server) handleChooseStory(w http.ResponseWriter, r *http.Request) {
	choiceID, ok := intParam(w, r, "choiceID")
	if !ok {
		return
	}

	step, err := s.game.ChooseStory(r.Context(), PlayerIDFromContext(r.Context()), choiceID)
	if err != nil {
		respondGameError(w, r, err, "choose story option")
		return
	}
	respondJSON(w, http.StatusOK, step)
}

func (s *Server) handleSkipStory(w http.ResponseWriter, r *http.Request) {
	step, err := s.game.SkipStory(r.Context(), PlayerIDFromContext(r.Context()))
	if err != nil {
		respondGameError(w, r, err, "skip story")
		return
	}
	respondJSON(w, http.StatusOK, step)
}

func (s *Server) handleCloseStory(w http.ResponseWriter, r *http.Request) {
	step, err := s.game.CloseStory(r.Context(), PlayerIDFromContext(r.Context()))
	if err != nil {
		respondGameError(w, r, err, "close story")
		return
	}
	respondJSON(w, http.StatusOK, step)
}
