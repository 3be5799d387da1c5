package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store
var ErrClosed = errors.New("store is closed")

// Store mirrors player session state as string key/value pairs.
// Loading an unknown player yields an empty map, not an error.
type Store interface {
	// Load returns all persisted values of a player
	Load(ctx context.Context, playerID string) (map[string]string, error)
	// Save replaces all persisted values of a player
	Save(ctx context.Context, playerID string, values map[string]string) error
	// Clear removes everything persisted for a player
	Clear(ctx context.Context, playerID string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
