package storage

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore implements Store in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	players map[string]map[string]string
	closed  bool
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{players: make(map[string]map[string]string)}
}

// Load returns a copy of the player's values
func (s *MemoryStore) Load(_ context.Context, playerID string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return maps.Clone(s.players[playerID]), nil
}

// Save replaces the player's values
func (s *MemoryStore) Save(_ context.Context, playerID string, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.players[playerID] = maps.Clone(values)
	return nil
}

// Clear removes the player's values
func (s *MemoryStore) Clear(_ context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.players, playerID)
	return nil
}

// Ping reports whether the store is open
func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close releases the stored data
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.players = nil
	return nil
}
