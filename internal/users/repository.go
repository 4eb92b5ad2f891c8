package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plumeblog/plume/internal/platform/httpx"
)

const uniqueViolation = "23505"

// Repository defines data access methods for user records.
type Repository interface {
	Create(ctx context.Context, user User) error
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user User) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Create inserts a user row. A duplicate username surfaces as ErrConflict.
func (r *repository) Create(ctx context.Context, user User) error {
	const query = `INSERT INTO users (id, username, hashed_password, enabled) VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query, user.ID, user.Username, user.HashedPassword, user.Enabled)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("users: username %q: %w", user.Username, httpx.ErrConflict)
		}
		return err
	}
	return nil
}

// List returns all user records ordered by id.
func (r *repository) List(ctx context.Context) ([]User, error) {
	const query = `SELECT id, username, hashed_password, enabled FROM users ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.Enabled); err != nil {
			return nil, err
		}
		records = append(records, u)
	}
	return records, rows.Err()
}

// GetByID fetches one user record.
func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	const query = `SELECT id, username, hashed_password, enabled FROM users WHERE id = $1`
	var u User
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Username, &u.HashedPassword, &u.Enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("users: id %q: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}

// Update writes the mutable columns of an existing record.
func (r *repository) Update(ctx context.Context, user User) error {
	const query = `UPDATE users SET hashed_password = $2, enabled = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, user.ID, user.HashedPassword, user.Enabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("users: id %q: %w", user.ID, httpx.ErrNotFound)
	}
	return nil
}

// Delete removes the row. Owned posts are left in place: there is no
// cascade, and the worker's orphan scan reports anything left dangling.
func (r *repository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("users: id %q: %w", id, httpx.ErrNotFound)
	}
	return nil
}
