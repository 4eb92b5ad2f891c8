package posts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/plumeblog/plume/internal/auth"
	"github.com/plumeblog/plume/internal/platform/httpx"
)

// CreatePostInput carries the post creation fields. The author is the
// AuthorUsername field, not the authenticated caller; see DESIGN.md on
// why that compatibility quirk is kept. ID and CreatedAt are optional.
type CreatePostInput struct {
	ID             string
	Title          string
	CreatedAt      *int64
	AuthorUsername string
}

// UpdatePostInput carries the partial update fields. A nil Title leaves
// both the title and the timestamp untouched.
type UpdatePostInput struct {
	Title *string
}

// Service handles post business logic.
type Service struct {
	repo Repository
	now  func() int64
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() int64 { return time.Now().Unix() },
	}
}

// Create inserts a post attributed to the named author. Callers verify
// credentials first; the author lookup races against user deletion and
// the repository turns that race into ErrAuthorNotFound.
func (s *Service) Create(ctx context.Context, in CreatePostInput) (Post, error) {
	authorUsername, err := auth.NormalizeUsername(in.AuthorUsername)
	if err != nil {
		return Post{}, fmt.Errorf("invalid author username: %w", httpx.ErrValidation)
	}

	post := Post{
		ID:        in.ID,
		Title:     in.Title,
		CreatedAt: s.now(),
	}
	if post.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return Post{}, err
		}
		post.ID = id.String()
	}
	if in.CreatedAt != nil {
		post.CreatedAt = *in.CreatedAt
	}

	return s.repo.CreateForAuthor(ctx, post, authorUsername)
}

// Update edits a post's title. Only the owning user may edit; a missing
// post and a foreign post both answer Forbidden. Providing a title resets
// created_at to the edit time.
func (s *Service) Update(ctx context.Context, id string, in UpdatePostInput, authUsername string) (Post, error) {
	owned, err := s.lockOwner(ctx, id, authUsername)
	if err != nil {
		return Post{}, err
	}

	if in.Title == nil {
		return owned.Post, nil
	}
	owned.Title = *in.Title
	owned.CreatedAt = s.now()
	if err := s.repo.Update(ctx, owned.Post); err != nil {
		return Post{}, err
	}
	return owned.Post, nil
}

// Delete removes a post. Same ownership rule as Update; hard delete.
func (s *Service) Delete(ctx context.Context, id, authUsername string) error {
	if _, err := s.lockOwner(ctx, id, authUsername); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ListAll returns every post in the system.
func (s *Service) ListAll(ctx context.Context) ([]Post, error) {
	return s.repo.ListAll(ctx)
}

// ListByUser returns the posts owned by the given user id. The id is not
// required to exist; an unknown id simply yields an empty list.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Post, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) lockOwner(ctx context.Context, id, authUsername string) (*OwnedPost, error) {
	owned, err := s.repo.GetOwned(ctx, id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, fmt.Errorf("post %s: %w", id, httpx.ErrForbidden)
		}
		return nil, err
	}
	if owned.OwnerUsername == "" || owned.OwnerUsername != authUsername {
		return nil, fmt.Errorf("post %s: %w", id, httpx.ErrForbidden)
	}
	return owned, nil
}
