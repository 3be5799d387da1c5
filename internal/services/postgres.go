package services

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresProvider checks PostgreSQL over database/sql
type PostgresProvider struct {
	BaseProvider
	db *sql.DB
}

// NewPostgresProvider creates a new PostgreSQL provider
func NewPostgresProvider(ctx context.Context, dsn string) (*PostgresProvider, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	db.SetMaxOpenConns(2)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresProvider{
		BaseProvider: BaseProvider{serviceType: "postgres"},
		db:           db,
	}, nil
}

// HealthCheck verifies connectivity and that the player_state table exists
func (p *PostgresProvider) HealthCheck(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return err
	}
	var table sql.NullString
	if err := p.db.QueryRowContext(ctx, `SELECT to_regclass('player_state')::text`).Scan(&table); err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if !table.Valid {
		return fmt.Errorf("player_state table missing; run migrations")
	}
	return nil
}

// Close closes the connection
func (p *PostgresProvider) Close() error {
	return p.db.Close()
}
