package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKeyPrefix namespaces player hashes
const RedisKeyPrefix = "heroquest:player:"

// RedisStore implements Store with one Redis hash per player
type RedisStore struct {
	client *redis.Client
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedisStore creates a new Redis store
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisStoreFromClient(client), nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(playerID string) string {
	return RedisKeyPrefix + playerID
}

// Load returns all persisted values of a player
func (s *RedisStore) Load(ctx context.Context, playerID string) (map[string]string, error) {
	values, err := s.client.HGetAll(ctx, redisKey(playerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load player state: %w", err)
	}
	return values, nil
}

// Save replaces all persisted values of a player atomically
func (s *RedisStore) Save(ctx context.Context, playerID string, values map[string]string) error {
	key := redisKey(playerID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			fields := make(map[string]interface{}, len(values))
			for k, v := range values {
				fields[k] = v
			}
			pipe.HSet(ctx, key, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save player state: %w", err)
	}
	return nil
}

// Clear removes everything persisted for a player
func (s *RedisStore) Clear(ctx context.Context, playerID string) error {
	if err := s.client.Del(ctx, redisKey(playerID)).Err(); err != nil {
		return fmt.Errorf("failed to clear player state: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
