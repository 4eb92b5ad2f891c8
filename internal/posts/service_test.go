package posts

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plumeblog/plume/internal/platform/httpx"
	_ "github.com/plumeblog/plume/testing"
)

// memoryPostRepo keeps posts plus a username->user id table standing in
// for the users table the real repository joins against.
type memoryPostRepo struct {
	posts   map[string]Post
	authors map[string]string
}

func newMemoryPostRepo() *memoryPostRepo {
	return &memoryPostRepo{
		posts:   make(map[string]Post),
		authors: make(map[string]string),
	}
}

func (r *memoryPostRepo) CreateForAuthor(ctx context.Context, post Post, authorUsername string) (Post, error) {
	authorID, ok := r.authors[authorUsername]
	if !ok {
		return Post{}, fmt.Errorf("username %q: %w", authorUsername, ErrAuthorNotFound)
	}
	post.CreatedBy = authorID
	if _, exists := r.posts[post.ID]; exists {
		return Post{}, fmt.Errorf("posts: id %q: %w", post.ID, httpx.ErrConflict)
	}
	r.posts[post.ID] = post
	return post, nil
}

func (r *memoryPostRepo) GetOwned(ctx context.Context, id string) (*OwnedPost, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("posts: id %q: %w", id, httpx.ErrNotFound)
	}
	owned := OwnedPost{Post: p}
	for username, userID := range r.authors {
		if userID == p.CreatedBy {
			owned.OwnerUsername = username
			break
		}
	}
	return &owned, nil
}

func (r *memoryPostRepo) Update(ctx context.Context, post Post) error {
	if _, ok := r.posts[post.ID]; !ok {
		return fmt.Errorf("posts: id %q: %w", post.ID, httpx.ErrNotFound)
	}
	r.posts[post.ID] = post
	return nil
}

func (r *memoryPostRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.posts[id]; !ok {
		return fmt.Errorf("posts: id %q: %w", id, httpx.ErrNotFound)
	}
	delete(r.posts, id)
	return nil
}

func (r *memoryPostRepo) ListAll(ctx context.Context) ([]Post, error) {
	var out []Post
	for _, p := range r.posts {
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryPostRepo) ListByUser(ctx context.Context, userID string) ([]Post, error) {
	var out []Post
	for _, p := range r.posts {
		if p.CreatedBy == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTestService(repo Repository, now int64) *Service {
	svc := NewService(repo)
	svc.now = func() int64 { return now }
	return svc
}

func TestCreateResolvesAuthor(t *testing.T) {
	repo := newMemoryPostRepo()
	repo.authors["alice"] = "user-a"
	svc := newTestService(repo, 1000)

	post, err := svc.Create(context.Background(), CreatePostInput{Title: "hello", AuthorUsername: "alice"})
	require.NoError(t, err)
	require.NotEmpty(t, post.ID)
	require.Equal(t, "user-a", post.CreatedBy)
	require.Equal(t, int64(1000), post.CreatedAt)
}

func TestCreateUnknownAuthor(t *testing.T) {
	svc := newTestService(newMemoryPostRepo(), 1000)

	_, err := svc.Create(context.Background(), CreatePostInput{Title: "hello", AuthorUsername: "ghost"})
	require.ErrorIs(t, err, ErrAuthorNotFound)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateHonorsSuppliedFields(t *testing.T) {
	repo := newMemoryPostRepo()
	repo.authors["alice"] = "user-a"
	svc := newTestService(repo, 1000)

	suppliedAt := int64(42)
	post, err := svc.Create(context.Background(), CreatePostInput{
		ID:             "post-1",
		Title:          "hello",
		CreatedAt:      &suppliedAt,
		AuthorUsername: "alice",
	})
	require.NoError(t, err)
	require.Equal(t, "post-1", post.ID)
	require.Equal(t, int64(42), post.CreatedAt)
}

func TestUpdateOwnerOnly(t *testing.T) {
	repo := newMemoryPostRepo()
	repo.authors["alice"] = "user-a"
	repo.authors["bob"] = "user-b"
	svc := newTestService(repo, 1000)

	post, err := svc.Create(context.Background(), CreatePostInput{Title: "hello", AuthorUsername: "alice"})
	require.NoError(t, err)

	title := "hijacked"
	_, err = svc.Update(context.Background(), post.ID, UpdatePostInput{Title: &title}, "bob")
	require.ErrorIs(t, err, httpx.ErrForbidden)

	// A missing post answers Forbidden too, never NotFound.
	_, err = svc.Update(context.Background(), "missing", UpdatePostInput{Title: &title}, "alice")
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestUpdateTitleResetsTimestamp(t *testing.T) {
	repo := newMemoryPostRepo()
	repo.authors["alice"] = "user-a"
	svc := newTestService(repo, 1000)

	post, err := svc.Create(context.Background(), CreatePostInput{Title: "hello", AuthorUsername: "alice"})
	require.NoError(t, err)

	svc.now = func() int64 { return 2000 }
	title := "hi"
	updated, err := svc.Update(context.Background(), post.ID, UpdatePostInput{Title: &title}, "alice")
	require.NoError(t, err)
	require.Equal(t, "hi", updated.Title)
	require.Equal(t, int64(2000), updated.CreatedAt)
}

func TestUpdateWithoutTitleLeavesFieldsUntouched(t *testing.T) {
	repo := newMemoryPostRepo()
	repo.authors["alice"] = "user-a"
	svc := newTestService(repo, 1000)

	post, err := svc.Create(context.Background(), CreatePostInput{Title: "hello", AuthorUsername: "alice"})
	require.NoError(t, err)

	svc.now = func() int64 { return 2000 }
	updated, err := svc.Update(context.Background(), post.ID, UpdatePostInput{}, "alice")
	require.NoError(t, err)
	require.Equal(t, "hello", updated.Title)
	require.Equal(t, int64(1000), updated.CreatedAt)
}

func TestUpdateDanglingPostForbidden(t *testing.T) {
	repo := newMemoryPostRepo()
	repo.authors["alice"] = "user-a"
	svc := newTestService(repo, 1000)

	post, err := svc.Create(context.Background(), CreatePostInput{Title: "hello", AuthorUsername: "alice"})
	require.NoError(t, err)

	// Author deleted afterwards: the post dangles and nobody may edit it.
	delete(repo.authors, "alice")

	title := "hi"
	_, err = svc.Update(context.Background(), post.ID, UpdatePostInput{Title: &title}, "alice")
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestDeleteOwnerOnly(t *testing.T) {
	repo := newMemoryPostRepo()
	repo.authors["alice"] = "user-a"
	repo.authors["bob"] = "user-b"
	svc := newTestService(repo, 1000)

	post, err := svc.Create(context.Background(), CreatePostInput{Title: "hello", AuthorUsername: "alice"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), post.ID, "bob"), httpx.ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), post.ID, "alice"))
	require.ErrorIs(t, svc.Delete(context.Background(), post.ID, "alice"), httpx.ErrForbidden)
}

func TestListByUserFilters(t *testing.T) {
	repo := newMemoryPostRepo()
	repo.authors["alice"] = "user-a"
	repo.authors["bob"] = "user-b"
	svc := newTestService(repo, 1000)

	_, err := svc.Create(context.Background(), CreatePostInput{Title: "a1", AuthorUsername: "alice"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreatePostInput{Title: "b1", AuthorUsername: "bob"})
	require.NoError(t, err)

	mine, err := svc.ListByUser(context.Background(), "user-a")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "a1", mine[0].Title)

	none, err := svc.ListByUser(context.Background(), "user-z")
	require.NoError(t, err)
	require.Empty(t, none)

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
}
