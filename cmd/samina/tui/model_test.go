package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samina/cmd/samina/ui"
	"samina/internal/session"
	"samina/internal/store"
	"samina/internal/types"
)

// fakeGateway serves a fixed post list and accepts every mutation.
type fakeGateway struct {
	posts []types.Post
}

func (g *fakeGateway) ListPosts(ctx context.Context) ([]types.Post, error) {
	out := make([]types.Post, len(g.posts))
	copy(out, g.posts)
	return out, nil
}
func (g *fakeGateway) InsertPost(ctx context.Context, post types.Post) error   { return nil }
func (g *fakeGateway) UpdatePost(ctx context.Context, post types.Post) error   { return nil }
func (g *fakeGateway) UpdatePostLikes(ctx context.Context, id string, likes int) error {
	return nil
}
func (g *fakeGateway) DeletePost(ctx context.Context, id string) error { return nil }
func (g *fakeGateway) InsertComment(ctx context.Context, postID string, comment types.Comment) error {
	return nil
}

type stubProvider struct{}

func (stubProvider) Restore(ctx context.Context) (*types.SessionClaims, error) { return nil, nil }
func (stubProvider) SignIn(ctx context.Context, email, password string) (*types.SessionClaims, error) {
	return &types.SessionClaims{UserID: "u1", Email: email, FullName: "Maya Chen"}, nil
}
func (stubProvider) SignUp(ctx context.Context, name, email, password string) (*types.SessionClaims, error) {
	return &types.SessionClaims{UserID: "u1", Email: email, FullName: name}, nil
}
func (stubProvider) SignOut(ctx context.Context) error { return nil }

func newTestModel(t *testing.T, posts []types.Post) *Model {
	t.Helper()
	sessions := session.NewManager(stubProvider{})
	s := store.New(&fakeGateway{posts: posts}, sessions)
	require.NoError(t, s.Refresh(context.Background()))

	m := New(s, sessions, nil, ui.NewStyles(ui.LightTheme()))
	t.Cleanup(m.Shutdown)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func feedPosts() []types.Post {
	return []types.Post{
		{ID: "p1", Title: "Quantum Brushwork", Excerpt: "physics on canvas", Category: types.CategoryArt, AuthorID: "u1"},
		{ID: "p2", Title: "Deep Sea Vents", Excerpt: "life without sunlight", Category: types.CategoryScience, AuthorID: "u2"},
	}
}

func TestFeed_CategoryTabFiltersPosts(t *testing.T) {
	m := newTestModel(t, feedPosts())

	assert.Len(t, m.visiblePosts(), 2)

	// First tab right of "All" is ART.
	m.Update(keyMsg("l"))
	visible := m.visiblePosts()
	require.Len(t, visible, 1)
	assert.Equal(t, "p1", visible[0].ID)
}

func TestFeed_SearchNarrowsAndClampsCursor(t *testing.T) {
	m := newTestModel(t, feedPosts())
	m.cursor = 1

	m.Update(keyMsg("/"))
	require.True(t, m.searching)
	for _, r := range "vents" {
		m.Update(keyMsg(string(r)))
	}

	visible := m.visiblePosts()
	require.Len(t, visible, 1)
	assert.Equal(t, "p2", visible[0].ID)
	assert.Equal(t, 0, m.cursor)
}

func TestFeed_EnterOpensPost(t *testing.T) {
	m := newTestModel(t, feedPosts())

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, PostView, m.viewMode)
	assert.Equal(t, "p1", m.openPostID)
}

func TestFeed_ComposeRequiresSession(t *testing.T) {
	m := newTestModel(t, feedPosts())

	m.Update(keyMsg("n"))
	assert.Equal(t, AuthView, m.viewMode)
}

func TestAuthSuccess_ReturnsToFeed(t *testing.T) {
	m := newTestModel(t, feedPosts())
	m.viewMode = AuthView

	m.Update(authResultMsg{user: &types.User{Name: "Maya Chen"}})
	assert.Equal(t, FeedView, m.viewMode)
	assert.Contains(t, m.status, "Maya Chen")
}

func TestAuthFailure_ShowsError(t *testing.T) {
	m := newTestModel(t, feedPosts())
	m.viewMode = AuthView

	m.Update(authResultMsg{err: assert.AnError})
	assert.Equal(t, AuthView, m.viewMode)
	assert.NotEmpty(t, m.authErr)
}

func TestSessionLost_ForcesOutOfStudio(t *testing.T) {
	m := newTestModel(t, feedPosts())
	m.viewMode = StudioView

	m.Update(sessionChangedMsg{user: nil})
	assert.Equal(t, FeedView, m.viewMode)
}

func TestSessionLost_ForcesOutOfCompose(t *testing.T) {
	m := newTestModel(t, feedPosts())
	m.viewMode = ComposeView

	m.Update(sessionChangedMsg{user: nil})
	assert.Equal(t, FeedView, m.viewMode)
}

func TestSessionChange_KeepsFeedInPlace(t *testing.T) {
	m := newTestModel(t, feedPosts())

	m.Update(sessionChangedMsg{user: &types.User{ID: "u1", Name: "Maya Chen"}})
	assert.Equal(t, FeedView, m.viewMode)
}

func TestMutationSignInRequired_RedirectsToAuth(t *testing.T) {
	m := newTestModel(t, feedPosts())
	m.viewMode = PostView
	m.openPostID = "p1"

	m.Update(likeDoneMsg{postID: "p1", err: store.ErrSignInRequired})
	assert.Equal(t, AuthView, m.viewMode)
}

func TestAssistantUnconfigured_ExplainsSetup(t *testing.T) {
	m := newTestModel(t, feedPosts())
	m.viewMode = AssistantView
	m.chatInput.SetValue("hello")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	last := m.chatHistory[len(m.chatHistory)-1]
	assert.Equal(t, types.RoleModel, last.Role)
	assert.Contains(t, last.Text, "GEMINI_API_KEY")
}

func TestAssistantReply_AppendsToHistory(t *testing.T) {
	m := newTestModel(t, feedPosts())
	before := len(m.chatHistory)

	m.Update(assistantReplyMsg{text: "Here's an idea."})
	require.Len(t, m.chatHistory, before+1)
	assert.Equal(t, "Here's an idea.", m.chatHistory[before].Text)
}

func TestViewRendersEachMode(t *testing.T) {
	m := newTestModel(t, feedPosts())

	for _, mode := range []ViewMode{FeedView, AuthView, ComposeView, StudioView, AssistantView} {
		m.viewMode = mode
		assert.NotEmpty(t, m.View())
	}

	m.openPostID = "p1"
	m.syncOpenPost()
	m.viewMode = PostView
	assert.NotEmpty(t, m.View())
}
