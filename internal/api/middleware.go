package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/hero-quest/internal/game"
)

// playerContext validates the {playerID} path parameter and stores it in the
// request context. Player ids are capability tokens: knowing one is access.
func (s *Server) playerContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "playerID")
		if err := game.ValidatePlayerID(playerID); err != nil {
			slog.Debug("rejected player id", "player_id", playerID, "remote_addr", r.RemoteAddr)
			respondError(w, http.StatusBadRequest, "invalid_player_id", "player id must be a UUID")
			return
		}

		ctx := ContextWithPlayerID(r.Context(), playerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
