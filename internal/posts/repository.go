package posts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plumeblog/plume/internal/platform/db"
	"github.com/plumeblog/plume/internal/platform/httpx"
)

// ErrAuthorNotFound signals that the named author does not exist (or was
// deleted while the insert was in flight).
var ErrAuthorNotFound = fmt.Errorf("author not found: %w", httpx.ErrValidation)

const uniqueViolation = "23505"

// Repository defines data access methods for post records.
type Repository interface {
	CreateForAuthor(ctx context.Context, post Post, authorUsername string) (Post, error)
	GetOwned(ctx context.Context, id string) (*OwnedPost, error)
	Update(ctx context.Context, post Post) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]Post, error)
	ListByUser(ctx context.Context, userID string) ([]Post, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// CreateForAuthor resolves the author by username and inserts the post in
// one transaction. The author row is share-locked so a concurrent user
// deletion cannot slip between the lookup and the insert; a vanished
// author surfaces as ErrAuthorNotFound rather than a dangling insert.
func (r *repository) CreateForAuthor(ctx context.Context, post Post, authorUsername string) (Post, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var authorID string
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE username = $1 FOR SHARE`, authorUsername).Scan(&authorID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("username %q: %w", authorUsername, ErrAuthorNotFound)
			}
			return err
		}
		post.CreatedBy = authorID

		_, err = tx.Exec(ctx,
			`INSERT INTO posts (id, title, created_at, created_by) VALUES ($1, $2, $3, $4)`,
			post.ID, post.Title, post.CreatedAt, post.CreatedBy,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return fmt.Errorf("posts: id %q: %w", post.ID, httpx.ErrConflict)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return Post{}, err
	}
	return post, nil
}

// GetOwned fetches a post together with its author's username. Dangling
// posts come back with an empty owner.
func (r *repository) GetOwned(ctx context.Context, id string) (*OwnedPost, error) {
	const query = `
		SELECT p.id, p.title, p.created_at, p.created_by, u.username
		FROM posts p
		LEFT JOIN users u ON u.id = p.created_by
		WHERE p.id = $1`
	var op OwnedPost
	var owner *string
	err := r.pool.QueryRow(ctx, query, id).Scan(&op.ID, &op.Title, &op.CreatedAt, &op.CreatedBy, &owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("posts: id %q: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}
	if owner != nil {
		op.OwnerUsername = *owner
	}
	return &op, nil
}

// Update writes the mutable columns of an existing record.
func (r *repository) Update(ctx context.Context, post Post) error {
	const query = `UPDATE posts SET title = $2, created_at = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, post.ID, post.Title, post.CreatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("posts: id %q: %w", post.ID, httpx.ErrNotFound)
	}
	return nil
}

// Delete removes the row.
func (r *repository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM posts WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("posts: id %q: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// ListAll returns every post ordered by id (UUIDv7 ids sort by creation time).
func (r *repository) ListAll(ctx context.Context) ([]Post, error) {
	const query = `SELECT id, title, created_at, created_by FROM posts ORDER BY id`
	return r.collect(ctx, query)
}

// ListByUser returns the posts owned by one user id.
func (r *repository) ListByUser(ctx context.Context, userID string) ([]Post, error) {
	const query = `SELECT id, title, created_at, created_by FROM posts WHERE created_by = $1 ORDER BY id`
	return r.collect(ctx, query, userID)
}

func (r *repository) collect(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.CreatedAt, &p.CreatedBy); err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	return records, rows.Err()
}
