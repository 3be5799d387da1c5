package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN         string
	MaxConns    int32
	MinConns    int32
	MaxLifetime time.Duration
}

// NewPostgresStore creates a new PostgreSQL store.
// The player_state table must exist; see RunMigrations.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	} else {
		poolConfig.MaxConns = 25
	}

	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Pool exposes the connection pool for migrations
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Load returns all persisted values of a player
func (s *PostgresStore) Load(ctx context.Context, playerID string) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT key, value FROM player_state WHERE player_id = $1`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player state: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan player state: %w", err)
		}
		values[key] = value
	}

	return values, rows.Err()
}

// Save replaces all persisted values of a player in one transaction
func (s *PostgresStore) Save(ctx context.Context, playerID string, values map[string]string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM player_state WHERE player_id = $1`, playerID); err != nil {
		return fmt.Errorf("failed to clear player state: %w", err)
	}

	batch := &pgx.Batch{}
	for key, value := range values {
		batch.Queue(
			`INSERT INTO player_state (player_id, key, value, updated_at) VALUES ($1, $2, $3, NOW())`,
			playerID, key, value,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save player state: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit player state: %w", err)
	}
	return nil
}

// Clear removes everything persisted for a player
func (s *PostgresStore) Clear(ctx context.Context, playerID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM player_state WHERE player_id = $1`, playerID); err != nil {
		return fmt.Errorf("failed to clear player state: %w", err)
	}
	return nil
}
