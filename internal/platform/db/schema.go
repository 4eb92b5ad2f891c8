package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// posts.created_by intentionally carries no FOREIGN KEY constraint: user
// deletion performs no cascade and must leave its posts behind. Referential
// integrity at post creation is enforced transactionally by the posts
// repository instead.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		created_by TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_created_by ON posts (created_by)`,
}

// EnsureSchema creates the tables on startup when absent. Safe to run on
// every boot.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("platform/db: ensure schema: %w", err)
		}
	}
	return nil
}
