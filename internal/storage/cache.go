package storage

import (
	"context"
	"fmt"
	"maps"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStore keeps recently used player state in an LRU in front of another store.
// Writes go through to the underlying store before the cache is updated.
type CachedStore struct {
	next    Store
	cache   *lru.Cache[string, map[string]string]
	observe func(hit bool)
}

// CacheOption configures a CachedStore
type CacheOption func(*CachedStore)

// WithCacheObserver reports every lookup as a hit or a miss
func WithCacheObserver(fn func(hit bool)) CacheOption {
	return func(s *CachedStore) {
		s.observe = fn
	}
}

// NewCachedStore wraps next with an LRU holding up to size players
func NewCachedStore(next Store, size int, opts ...CacheOption) (*CachedStore, error) {
	cache, err := lru.New[string, map[string]string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	s := &CachedStore{next: next, cache: cache, observe: func(bool) {}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load serves from the cache, falling back to the underlying store
func (s *CachedStore) Load(ctx context.Context, playerID string) (map[string]string, error) {
	if values, ok := s.cache.Get(playerID); ok {
		s.observe(true)
		return maps.Clone(values), nil
	}
	s.observe(false)

	values, err := s.next.Load(ctx, playerID)
	if err != nil {
		return nil, err
	}
	s.cache.Add(playerID, maps.Clone(values))
	return values, nil
}

// Save writes through and refreshes the cache
func (s *CachedStore) Save(ctx context.Context, playerID string, values map[string]string) error {
	if err := s.next.Save(ctx, playerID, values); err != nil {
		s.cache.Remove(playerID)
		return err
	}
	s.cache.Add(playerID, maps.Clone(values))
	return nil
}

// Clear removes the player from both layers
func (s *CachedStore) Clear(ctx context.Context, playerID string) error {
	s.cache.Remove(playerID)
	return s.next.Clear(ctx, playerID)
}

// Len returns the number of cached players
func (s *CachedStore) Len() int {
	return s.cache.Len()
}

// Ping checks the underlying store
func (s *CachedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close purges the cache and closes the underlying store
func (s *CachedStore) Close() error {
	s.cache.Purge()
	return s.next.Close()
}
