package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"samina/internal/types"
)

// =============================================================================
// COMMANDS
// =============================================================================

// Commands wrap the blocking core operations so the update loop never
// stalls. Each returns a typed message; nothing here touches the model.

func (m *Model) refreshPostsCmd() tea.Cmd {
	return func() tea.Msg {
		return postsLoadedMsg{err: m.posts.Refresh(context.Background())}
	}
}

func (m *Model) signInCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := m.sessions.SignIn(context.Background(), email, password)
		return authResultMsg{user: user, err: err}
	}
}

func (m *Model) signUpCmd(name, email, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := m.sessions.SignUp(context.Background(), name, email, password)
		return authResultMsg{user: user, err: err}
	}
}

func (m *Model) signOutCmd() tea.Cmd {
	return func() tea.Msg {
		// Identity is cleared locally regardless; the subscription
		// delivers the nil notification.
		_ = m.sessions.SignOut(context.Background())
		return nil
	}
}

func (m *Model) createPostCmd(draft types.Draft) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{action: "publish", err: m.posts.Create(context.Background(), draft)}
	}
}

func (m *Model) updatePostCmd(post types.Post) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{action: "update", err: m.posts.Update(context.Background(), post)}
	}
}

func (m *Model) deletePostCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{action: "delete", err: m.posts.Delete(context.Background(), id)}
	}
}

func (m *Model) likePostCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return likeDoneMsg{postID: id, err: m.posts.Like(context.Background(), id)}
	}
}

func (m *Model) commentCmd(postID, content string) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{action: "comment", err: m.posts.Comment(context.Background(), postID, content)}
	}
}

func (m *Model) askAssistantCmd(message string, history []types.ChatMessage) tea.Cmd {
	return func() tea.Msg {
		return assistantReplyMsg{text: m.assistant.Chat(context.Background(), message, history)}
	}
}

func (m *Model) analyzeImageCmd(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return imageAnalyzedMsg{err: err}
		}
		return imageAnalyzedMsg{
			text: m.assistant.AnalyzeImage(context.Background(), data, mimeTypeForPath(path)),
		}
	}
}

// waitForSessionCmd blocks on the subscription channel and re-arms
// itself after each delivery (see Update).
func (m *Model) waitForSessionCmd() tea.Cmd {
	return func() tea.Msg {
		user, ok := <-m.sessionCh
		if !ok {
			return nil
		}
		return sessionChangedMsg{user: user}
	}
}

func mimeTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
