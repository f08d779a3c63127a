package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samina/internal/session"
	"samina/internal/types"
)

// fakeGateway implements Gateway with pluggable behavior and call counts.
type fakeGateway struct {
	posts    []types.Post
	listErr  error
	listCall int

	insertErr    error
	insertedPost *types.Post

	updateErr   error
	updatedPost *types.Post

	likesErr error
	likesID  string
	likesVal int

	deleteErr error
	deletedID string

	commentErr     error
	commentPostID  string
	commentInserts []types.Comment
}

func (g *fakeGateway) ListPosts(ctx context.Context) ([]types.Post, error) {
	g.listCall++
	if g.listErr != nil {
		return nil, g.listErr
	}
	out := make([]types.Post, len(g.posts))
	copy(out, g.posts)
	return out, nil
}

func (g *fakeGateway) InsertPost(ctx context.Context, post types.Post) error {
	g.insertedPost = &post
	return g.insertErr
}

func (g *fakeGateway) UpdatePost(ctx context.Context, post types.Post) error {
	g.updatedPost = &post
	return g.updateErr
}

func (g *fakeGateway) UpdatePostLikes(ctx context.Context, id string, likes int) error {
	g.likesID = id
	g.likesVal = likes
	return g.likesErr
}

func (g *fakeGateway) DeletePost(ctx context.Context, id string) error {
	g.deletedID = id
	return g.deleteErr
}

func (g *fakeGateway) InsertComment(ctx context.Context, postID string, comment types.Comment) error {
	g.commentPostID = postID
	g.commentInserts = append(g.commentInserts, comment)
	return g.commentErr
}

// stubProvider signs anyone in as a fixed identity.
type stubProvider struct{}

func (stubProvider) Restore(ctx context.Context) (*types.SessionClaims, error) { return nil, nil }

func (stubProvider) SignIn(ctx context.Context, email, password string) (*types.SessionClaims, error) {
	return &types.SessionClaims{UserID: "u1", Email: email, FullName: "Iris Calder"}, nil
}

func (stubProvider) SignUp(ctx context.Context, name, email, password string) (*types.SessionClaims, error) {
	return &types.SessionClaims{UserID: "u1", Email: email, FullName: name}, nil
}

func (stubProvider) SignOut(ctx context.Context) error { return nil }

func signedOut() *session.Manager {
	return session.NewManager(stubProvider{})
}

func signedIn(t *testing.T) *session.Manager {
	t.Helper()
	m := session.NewManager(stubProvider{})
	_, err := m.SignIn(context.Background(), "iris@samina.dev", "pw")
	require.NoError(t, err)
	return m
}

func twoPosts() []types.Post {
	return []types.Post{
		{ID: "p1", Title: "First", Likes: 4, AuthorID: "u1"},
		{ID: "p2", Title: "Second", Likes: 0, AuthorID: "u2"},
	}
}

func TestRefresh_ReplacesCache(t *testing.T) {
	gw := &fakeGateway{posts: twoPosts()}
	s := New(gw, signedOut())

	require.NoError(t, s.Refresh(context.Background()))
	assert.Len(t, s.Posts(), 2)

	// A second refresh with the same data is idempotent.
	require.NoError(t, s.Refresh(context.Background()))
	assert.Len(t, s.Posts(), 2)
}

func TestRefresh_FailureKeepsLastKnownGood(t *testing.T) {
	gw := &fakeGateway{posts: twoPosts()}
	s := New(gw, signedOut())
	require.NoError(t, s.Refresh(context.Background()))

	gw.listErr = errors.New("503")
	err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.Len(t, s.Posts(), 2, "stale cache must survive a failed refresh")
}

func TestCreate_RequiresSession(t *testing.T) {
	gw := &fakeGateway{}
	s := New(gw, signedOut())

	err := s.Create(context.Background(), types.Draft{Title: "T", Content: "C", Category: types.CategoryArt})
	assert.ErrorIs(t, err, ErrSignInRequired)
	assert.Nil(t, gw.insertedPost, "unauthenticated create must not reach the gateway")
}

func TestCreate_DerivesFieldsAndRefreshes(t *testing.T) {
	gw := &fakeGateway{}
	s := New(gw, signedIn(t))

	content := strings.Repeat("x", 200)
	require.NoError(t, s.Create(context.Background(), types.Draft{
		Title:    "Long Read",
		Content:  content,
		Category: types.CategoryScience,
	}))

	require.NotNil(t, gw.insertedPost)
	p := *gw.insertedPost
	assert.Equal(t, strings.Repeat("x", 150)+"...", p.Excerpt)
	assert.Equal(t, "u1", p.AuthorID)
	assert.Equal(t, "Iris Calder", p.AuthorName)
	assert.True(t, strings.HasPrefix(p.Thumbnail, "https://picsum.photos/800/600?random="), "placeholder thumbnail, got %q", p.Thumbnail)
	assert.NotNil(t, p.Tags)
	assert.NotNil(t, p.Attachments)
	assert.Equal(t, 1, gw.listCall, "successful create refreshes the cache")
}

func TestCreate_DistinctPlaceholderThumbnails(t *testing.T) {
	gw := &fakeGateway{}
	s := New(gw, signedIn(t))

	require.NoError(t, s.Create(context.Background(), types.Draft{Title: "A", Content: "a", Category: types.CategoryArt}))
	first := gw.insertedPost.Thumbnail
	require.NoError(t, s.Create(context.Background(), types.Draft{Title: "B", Content: "b", Category: types.CategoryArt}))
	assert.NotEqual(t, first, gw.insertedPost.Thumbnail)
}

func TestCreate_GatewayFailureLeavesCacheUntouched(t *testing.T) {
	gw := &fakeGateway{posts: twoPosts()}
	s := New(gw, signedIn(t))
	require.NoError(t, s.Refresh(context.Background()))
	calls := gw.listCall

	gw.insertErr = errors.New("row violates policy")
	err := s.Create(context.Background(), types.Draft{Title: "T", Content: "C", Category: types.CategoryArt})
	require.Error(t, err)
	assert.Len(t, s.Posts(), 2)
	assert.Equal(t, calls, gw.listCall, "failed create must not refresh")
}

func TestUpdate_RecomputesExcerpt(t *testing.T) {
	gw := &fakeGateway{}
	s := New(gw, signedIn(t))

	require.NoError(t, s.Update(context.Background(), types.Post{
		ID:      "p1",
		Title:   "Edited",
		Content: "new body",
		Excerpt: "stale excerpt",
	}))

	require.NotNil(t, gw.updatedPost)
	assert.Equal(t, "new body...", gw.updatedPost.Excerpt)
	assert.Equal(t, 1, gw.listCall)
}

func TestDelete_RemovesLocallyWithoutRefresh(t *testing.T) {
	gw := &fakeGateway{posts: twoPosts()}
	s := New(gw, signedIn(t))
	require.NoError(t, s.Refresh(context.Background()))
	calls := gw.listCall

	require.NoError(t, s.Delete(context.Background(), "p1"))

	assert.Equal(t, "p1", gw.deletedID)
	assert.Equal(t, calls, gw.listCall, "delete patches the cache locally")
	posts := s.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, "p2", posts[0].ID)
}

func TestDelete_GatewayErrorLeavesCache(t *testing.T) {
	gw := &fakeGateway{posts: twoPosts()}
	s := New(gw, signedIn(t))
	require.NoError(t, s.Refresh(context.Background()))

	gw.deleteErr = errors.New("not found")
	err := s.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.Len(t, s.Posts(), 2)
}

func TestLike_RequiresSession(t *testing.T) {
	gw := &fakeGateway{posts: twoPosts()}
	s := New(gw, signedOut())
	require.NoError(t, s.Refresh(context.Background()))

	err := s.Like(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrSignInRequired)
	p, ok := s.Get("p1")
	require.True(t, ok)
	assert.Equal(t, 4, p.Likes, "count unchanged without a session")
}

func TestLike_OptimisticIncrement(t *testing.T) {
	gw := &fakeGateway{posts: twoPosts()}
	s := New(gw, signedIn(t))
	require.NoError(t, s.Refresh(context.Background()))

	require.NoError(t, s.Like(context.Background(), "p1"))

	assert.Equal(t, "p1", gw.likesID)
	assert.Equal(t, 5, gw.likesVal, "absolute count submitted")
	p, _ := s.Get("p1")
	assert.Equal(t, 5, p.Likes)
}

func TestLike_FailureRollsBack(t *testing.T) {
	gw := &fakeGateway{posts: twoPosts(), likesErr: errors.New("timeout")}
	s := New(gw, signedIn(t))
	require.NoError(t, s.Refresh(context.Background()))

	err := s.Like(context.Background(), "p1")
	require.Error(t, err)
	p, _ := s.Get("p1")
	assert.Equal(t, 4, p.Likes, "snapshot restored after failed submit")
}

func TestComment_SignedOutIsNoOp(t *testing.T) {
	gw := &fakeGateway{posts: twoPosts()}
	s := New(gw, signedOut())

	require.NoError(t, s.Comment(context.Background(), "p1", "nice"))
	assert.Empty(t, gw.commentInserts)
	assert.Zero(t, gw.listCall)
}

func TestComment_StampsSessionIdentity(t *testing.T) {
	gw := &fakeGateway{posts: twoPosts()}
	s := New(gw, signedIn(t))

	require.NoError(t, s.Comment(context.Background(), "p2", "great piece"))

	require.Len(t, gw.commentInserts, 1)
	c := gw.commentInserts[0]
	assert.Equal(t, "p2", gw.commentPostID)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, "Iris Calder", c.UserName)
	assert.Equal(t, "great piece", c.Content)
	assert.Equal(t, 1, gw.listCall, "successful comment refreshes the cache")
}

func TestByAuthor(t *testing.T) {
	gw := &fakeGateway{posts: twoPosts()}
	s := New(gw, signedOut())
	require.NoError(t, s.Refresh(context.Background()))

	mine := s.ByAuthor("u1")
	require.Len(t, mine, 1)
	assert.Equal(t, "p1", mine[0].ID)
	assert.Empty(t, s.ByAuthor("nobody"))
}
