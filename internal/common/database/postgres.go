package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"ideaforge-workers/internal/common/config"
)

// PostgresClient owns the pooled connection used by the idea repository and
// the notification store.
type PostgresClient struct {
	DB *sqlx.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sqlx.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Migrate creates the tables if they do not exist.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ideas (
		id                  TEXT PRIMARY KEY,
		entrepreneur_id     TEXT NOT NULL DEFAULT '',
		entrepreneur        JSONB NOT NULL DEFAULT 'null',
		title               TEXT NOT NULL DEFAULT '',
		tagline             TEXT NOT NULL DEFAULT '',
		description         TEXT NOT NULL DEFAULT '',
		category            TEXT NOT NULL DEFAULT '',
		stage               TEXT NOT NULL DEFAULT '',
		current_progress    TEXT NOT NULL DEFAULT '',
		problem_statement   TEXT NOT NULL DEFAULT '',
		proposed_solution   TEXT NOT NULL DEFAULT '',
		uniqueness          TEXT NOT NULL DEFAULT '',
		target_audience     TEXT NOT NULL DEFAULT '',
		market_size         TEXT NOT NULL DEFAULT '',
		competitors         TEXT NOT NULL DEFAULT '',
		customer_validation TEXT NOT NULL DEFAULT '',
		business_model      TEXT NOT NULL DEFAULT '',
		demo_url            TEXT NOT NULL DEFAULT '',
		team_background     TEXT NOT NULL DEFAULT '',
		pitch_deck_url      TEXT NOT NULL DEFAULT '',
		visibility          TEXT NOT NULL DEFAULT 'public',
		status              TEXT NOT NULL DEFAULT 'pending',
		ai_score            INTEGER,
		score_history       JSONB NOT NULL DEFAULT '[]',
		views               INTEGER NOT NULL DEFAULT 0,
		interests           JSONB NOT NULL DEFAULT '[]',
		featured            BOOLEAN NOT NULL DEFAULT FALSE,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS ideas_listing_idx ON ideas (status, visibility, ai_score DESC)`,
	`CREATE INDEX IF NOT EXISTS ideas_entrepreneur_idx ON ideas (entrepreneur_id)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id              TEXT PRIMARY KEY,
		recipient_id    TEXT NOT NULL,
		type            TEXT NOT NULL,
		title           TEXT NOT NULL,
		message         TEXT NOT NULL,
		idea_id         TEXT NOT NULL DEFAULT '',
		related_user_id TEXT NOT NULL DEFAULT '',
		read            BOOLEAN NOT NULL DEFAULT FALSE,
		action_required BOOLEAN NOT NULL DEFAULT FALSE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_recipient_idx ON notifications (recipient_id, created_at DESC)`,
}
