package api

import (
	"context"
)

type contextKey string

const playerContextKey contextKey = "player_id"

// PlayerIDFromContext extracts the player id from context
func PlayerIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(playerContextKey).(string)
	return id
}

// ContextWithPlayerID adds the player id to context
func ContextWithPlayerID(ctx context.Context, playerID string) context.Context {
	return context.WithValue(ctx, playerContextKey, playerID)
}
