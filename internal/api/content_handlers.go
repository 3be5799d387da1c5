package api

import (
	"net/http"
)

func (s *Server) handleListArchetypes(w http.ResponseWriter, r *http.Request) {
	archetypes := s.game.Catalog().Archetypes()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"archetypes": archetypes,
		"total":      len(archetypes),
	})
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions := s.game.Catalog().Questions()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"questions": questions,
		"total":     len(questions),
	})
}

func (s *Server) handleListMissions(w http.ResponseWriter, r *http.Request) {
	missions := s.game.Catalog().Missions()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"missions": missions,
		"total":    len(missions),
	})
}

func (s *Server) handleListBadges(w http.ResponseWriter, r *http.Request) {
	badges := s.game.Catalog().Badges()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"badges": badges,
		"total":  len(badges),
	})
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.game.Catalog().Assessment())
}

func (s *Server) handleGetStoryNode(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := intParam(w, r, "nodeID")
	if !ok {
		return
	}

	node, found := s.game.Catalog().Nodes()[nodeID]
	if !found {
		respondError(w, http.StatusNotFound, "node_not_found", "story node not found")
		return
	}
	respondJSON(w, http.StatusOK, node)
}
