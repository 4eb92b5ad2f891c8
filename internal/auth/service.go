package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/plumeblog/plume/internal/platform/httpx"
)

// Service wraps credential verification. It checks the claimed username,
// never the targeted record: "authenticated as X" and "allowed to touch
// record R" are separate checks and callers must perform both.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Verify reports whether the claimed username/password pair matches a
// stored account. Unknown username and wrong password produce the same
// false result; the returned error covers infrastructure failure only.
// The enabled flag is informational and deliberately not consulted.
func (s *Service) Verify(ctx context.Context, username, password string) (bool, error) {
	normalized, err := NormalizeUsername(username)
	if err != nil {
		return false, nil
	}
	acct, err := s.repo.FindByUsername(ctx, normalized)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.HashedPassword), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}
