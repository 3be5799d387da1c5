package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/hero-quest/internal/config"
)

// exerciseStore runs the behaviour every Store must share
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	values, err := s.Load(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, values)

	first := map[string]string{
		"hero-quest-hero-type": "warrior",
		"hero-quest-points":    "30",
	}
	require.NoError(t, s.Save(ctx, "p1", first))

	got, err := s.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, first, got)

	// Save replaces, dropping keys that are no longer present
	second := map[string]string{"hero-quest-points": "45"}
	require.NoError(t, s.Save(ctx, "p1", second))
	got, err = s.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, second, got)

	require.NoError(t, s.Save(ctx, "p2", first))
	require.NoError(t, s.Clear(ctx, "p1"))

	got, err = s.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Load(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Ping(context.Background()), ErrClosed)
	_, err := s.Load(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	values := map[string]string{"k": "v"}
	require.NoError(t, s.Save(ctx, "p", values))
	values["k"] = "changed"

	got, err := s.Load(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "v", got["k"])
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "hq.db")

	s, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "p", map[string]string{"hero-quest-story-node": "9"}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "9", got["hero-quest-story-node"])
}

func TestSQLiteStoreRejectsEmptyPath(t *testing.T) {
	_, err := NewSQLiteStore(context.Background(), "  ")
	assert.Error(t, err)
}

type countingStore struct {
	Store
	loads int
	fail  error
}

func (c *countingStore) Load(ctx context.Context, playerID string) (map[string]string, error) {
	c.loads++
	return c.Store.Load(ctx, playerID)
}

func (c *countingStore) Save(ctx context.Context, playerID string, values map[string]string) error {
	if c.fail != nil {
		return c.fail
	}
	return c.Store.Save(ctx, playerID, values)
}

func TestCachedStore(t *testing.T) {
	var hits, misses int
	next := &countingStore{Store: NewMemoryStore()}
	s, err := NewCachedStore(next, 2, WithCacheObserver(func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	}))
	require.NoError(t, err)

	exerciseStore(t, s)

	ctx := context.Background()
	next.loads = 0
	require.NoError(t, s.Save(ctx, "a", map[string]string{"k": "1"}))
	for i := 0; i < 3; i++ {
		got, err := s.Load(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "1", got["k"])
	}
	assert.Equal(t, 0, next.loads, "cached loads should not reach the backend")
	assert.Positive(t, hits)
	assert.Positive(t, misses)
}

func TestCachedStoreDropsEntryOnFailedSave(t *testing.T) {
	ctx := context.Background()
	next := &countingStore{Store: NewMemoryStore()}
	s, err := NewCachedStore(next, 8)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "a", map[string]string{"k": "1"}))
	next.fail = errors.New("disk full")
	assert.Error(t, s.Save(ctx, "a", map[string]string{"k": "2"}))

	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", got["k"])
	assert.Equal(t, 1, s.Len())
}

func TestCachedStoreRejectsBadSize(t *testing.T) {
	_, err := NewCachedStore(NewMemoryStore(), 0)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{Storage: config.StorageConfig{Backend: config.BackendMemory, CacheSize: 16}}
	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	s.Close()

	cfg = &config.Config{
		Storage: config.StorageConfig{Backend: config.BackendSQLite, CacheSize: 16},
		SQLite:  config.SQLiteConfig{Path: ":memory:"},
	}
	s, err = Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &CachedStore{}, s)
	exerciseStore(t, s)
	s.Close()

	cfg = &config.Config{Storage: config.StorageConfig{Backend: "etcd"}}
	_, err = Open(ctx, cfg)
	assert.Error(t, err)
}
