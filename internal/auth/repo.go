package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plumeblog/plume/internal/platform/httpx"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByUsername fetches an account by its exact (normalized) username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	const query = `SELECT id, username, hashed_password, enabled FROM users WHERE username = $1`
	var acct Account
	err := r.pool.QueryRow(ctx, query, username).Scan(&acct.ID, &acct.Username, &acct.HashedPassword, &acct.Enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &acct, nil
}

var _ Repository = (*PGRepository)(nil)
