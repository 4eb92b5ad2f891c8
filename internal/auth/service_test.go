package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/plumeblog/plume/internal/auth"
	"github.com/plumeblog/plume/internal/platform/httpx"
	_ "github.com/plumeblog/plume/testing"
)

type stubRepo struct {
	accounts map[string]*auth.Account
}

func (s *stubRepo) FindByUsername(ctx context.Context, username string) (*auth.Account, error) {
	acct, ok := s.accounts[username]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return acct, nil
}

func newVerifier(t *testing.T, username, password string) *auth.Service {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubRepo{accounts: map[string]*auth.Account{
		username: {ID: "u-1", Username: username, HashedPassword: string(hashed), Enabled: true},
	}}
	return auth.NewService(repo)
}

func TestVerifyMatchingPassword(t *testing.T) {
	svc := newVerifier(t, "alice", "pw1")

	ok, err := svc.Verify(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyWrongPassword(t *testing.T) {
	svc := newVerifier(t, "alice", "pw1")

	ok, err := svc.Verify(context.Background(), "alice", "nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyUnknownUser(t *testing.T) {
	svc := newVerifier(t, "alice", "pw1")

	ok, err := svc.Verify(context.Background(), "mallory", "pw1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyNormalizesUsername(t *testing.T) {
	svc := newVerifier(t, "alice", "pw1")

	// Stored usernames are canonical; a case variant must still verify.
	ok, err := svc.Verify(context.Background(), "Alice", "pw1")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyEmptyUsername(t *testing.T) {
	svc := newVerifier(t, "alice", "pw1")

	ok, err := svc.Verify(context.Background(), "", "pw1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNormalizeUsername(t *testing.T) {
	got, err := auth.NormalizeUsername("Alice")
	require.NoError(t, err)
	require.Equal(t, "alice", got)

	_, err = auth.NormalizeUsername("")
	require.Error(t, err)
}
