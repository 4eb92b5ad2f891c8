package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/plumeblog/plume/internal/auth"
	"github.com/plumeblog/plume/internal/platform/httpx"
)

// CreateUserInput carries the registration fields. ID is optional; when
// empty a time-sortable UUIDv7 is assigned.
type CreateUserInput struct {
	ID       string
	Username string
	Password string
	Enabled  *bool
}

// UpdateUserInput carries the self-service partial update fields. Nil
// means "leave unchanged".
type UpdateUserInput struct {
	Password *string
	Enabled  *bool
}

// Service handles user business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a user. No credentials are required; this is the entry
// point into the system.
func (s *Service) Create(ctx context.Context, in CreateUserInput) (User, error) {
	username, err := auth.NormalizeUsername(in.Username)
	if err != nil {
		return User{}, fmt.Errorf("invalid username: %w", httpx.ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:             in.ID,
		Username:       username,
		HashedPassword: string(hashed),
		Enabled:        true,
	}
	if user.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return User{}, err
		}
		user.ID = id.String()
	}
	if in.Enabled != nil {
		user.Enabled = *in.Enabled
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// List returns every user record. Callers gate this behind credential
// verification; any valid user may list all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// GetByID returns one record. Unlike the mutating operations, an unknown
// id answers NotFound here regardless of who asks.
func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	return *user, nil
}

// Update applies a self-service partial update. A missing record and an
// owner mismatch both answer Forbidden so callers cannot probe which ids
// exist.
func (s *Service) Update(ctx context.Context, id string, in UpdateUserInput, authUsername string) (User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return User{}, fmt.Errorf("user %s: %w", id, httpx.ErrForbidden)
		}
		return User{}, err
	}
	if user.Username != authUsername {
		return User{}, fmt.Errorf("user %s: %w", id, httpx.ErrForbidden)
	}

	if in.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		user.HashedPassword = string(hashed)
	}
	if in.Enabled != nil {
		user.Enabled = *in.Enabled
	}

	if err := s.repo.Update(ctx, *user); err != nil {
		return User{}, err
	}
	return *user, nil
}

// Delete removes the caller's own record. Same Forbidden conflation as
// Update; the hard delete does not cascade to owned posts.
func (s *Service) Delete(ctx context.Context, id, authUsername string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return fmt.Errorf("user %s: %w", id, httpx.ErrForbidden)
		}
		return err
	}
	if user.Username != authUsername {
		return fmt.Errorf("user %s: %w", id, httpx.ErrForbidden)
	}
	return s.repo.Delete(ctx, id)
}
