package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"samina/internal/types"
)

// =============================================================================
// RENDERING
// =============================================================================

func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var body string
	switch m.viewMode {
	case FeedView:
		body = m.renderFeed()
	case PostView:
		body = m.renderPost()
	case AuthView:
		body = m.renderAuth()
	case ComposeView:
		body = m.renderCompose()
	case StudioView:
		body = m.renderStudio()
	case AssistantView:
		body = m.renderAssistant()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.styles.Content.Render(body),
		m.renderFooter(),
	)
}

func (m *Model) renderHeader() string {
	left := "Samina"
	right := "signed out"
	if user := m.sessions.Current(); user != nil {
		right = user.Name
	}
	pad := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if pad < 1 {
		pad = 1
	}
	return m.styles.Header.Width(m.width).Render(left + strings.Repeat(" ", pad) + right)
}

func (m *Model) renderFooter() string {
	var help string
	switch m.viewMode {
	case FeedView:
		help = "↑/↓ select · ←/→ category · / search · enter open · n new · s studio · a assistant · i sign in/out · r refresh · q quit"
	case PostView:
		help = "l like · c comment · ↑/↓ scroll · esc back"
	case AuthView:
		help = "tab next field · enter submit · ctrl+t switch sign in/up · esc back"
	case ComposeView:
		help = "tab next field · ctrl+d publish · esc cancel"
	case StudioView:
		help = "n new · e edit · d delete · esc back"
	case AssistantView:
		help = "enter send · /analyze <path> · esc back"
	}

	line := m.styles.Footer.Render(help)
	if m.isLoading {
		line = m.spinner.View() + " " + line
	}
	if m.errText != "" {
		line = m.styles.Error.Render(m.errText) + "  " + line
	} else if m.status != "" {
		line = m.styles.Success.Render(m.status) + "  " + line
	}
	return line
}

// -----------------------------------------------------------------------------
// Feed
// -----------------------------------------------------------------------------

func (m *Model) renderFeed() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	if m.searching || m.searchInput.Value() != "" {
		b.WriteString(m.styles.SearchBox.Render(m.searchInput.View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	posts := m.visiblePosts()
	if len(posts) == 0 {
		b.WriteString(m.styles.Muted.Render("No posts match."))
		return b.String()
	}

	// Keep the selection visible on short terminals.
	visible := m.height - 10
	if visible < 3 {
		visible = 3
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}

	for i := start; i < len(posts) && i < start+visible; i++ {
		b.WriteString(m.renderCard(posts[i], i == m.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderTabs() string {
	tabs := []string{"All"}
	for _, c := range types.Categories() {
		tabs = append(tabs, string(c))
	}

	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		if i == m.categoryIdx {
			rendered[i] = m.styles.TabActive.Render(t)
		} else {
			rendered[i] = m.styles.Tab.Render(t)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) renderCard(post types.Post, selected bool) string {
	style := m.styles.Card
	if selected {
		style = m.styles.CardSelected
	}

	title := m.styles.Bold.Render(post.Title)
	meta := m.styles.Muted.Render(fmt.Sprintf("%s · %s · %s",
		post.AuthorName, post.Category, post.CreatedAt.Format("Jan 2, 2006")))
	stats := fmt.Sprintf("%s  %s",
		m.styles.LikeCount.Render(fmt.Sprintf("♥ %d", post.Likes)),
		m.styles.Muted.Render(fmt.Sprintf("💬 %d", len(post.Comments))))

	w := m.width - 8
	if w < 20 {
		w = 20
	}
	return style.Width(w).Render(strings.Join([]string{title, meta, post.Excerpt, stats}, "\n"))
}

// -----------------------------------------------------------------------------
// Single post
// -----------------------------------------------------------------------------

func (m *Model) renderPost() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.commenting {
		b.WriteString(m.styles.SearchBox.Render(m.commentInput.View()))
	}
	return b.String()
}

// renderPostContent builds the full article text for the viewport.
func (m *Model) renderPostContent(post types.Post) string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(post.Title))
	b.WriteString("\n")
	b.WriteString(m.styles.Badge.Render(string(post.Category)))
	b.WriteString("  ")
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%s · %s",
		post.AuthorName, post.CreatedAt.Format("January 2, 2006"))))
	b.WriteString("\n\n")

	content := post.Content
	if m.renderer != nil {
		if out, err := m.renderer.Render(content); err == nil {
			content = out
		}
	}
	b.WriteString(content)
	b.WriteString("\n")
	b.WriteString(m.styles.LikeCount.Render(fmt.Sprintf("♥ %d likes", post.Likes)))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Bold.Render(fmt.Sprintf("Discussion (%d)", len(post.Comments))))
	b.WriteString("\n")
	if len(post.Comments) == 0 {
		b.WriteString(m.styles.Muted.Render("No comments yet. Be the first to share your thoughts!"))
		b.WriteString("\n")
	}
	for _, c := range post.Comments {
		b.WriteString(m.styles.Bold.Render(c.UserName))
		b.WriteString(m.styles.Muted.Render("  " + c.CreatedAt.Format("Jan 2, 2006")))
		b.WriteString("\n")
		b.WriteString(c.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// -----------------------------------------------------------------------------
// Auth
// -----------------------------------------------------------------------------

func (m *Model) renderAuth() string {
	var b strings.Builder

	if m.authMode == authSignUp {
		b.WriteString(m.styles.Title.Render("Create your account"))
		b.WriteString("\n")
		b.WriteString(m.styles.FieldLabel.Render("Name"))
		b.WriteString("\n")
		b.WriteString(m.authInputs[authFieldName].View())
		b.WriteString("\n\n")
	} else {
		b.WriteString(m.styles.Title.Render("Welcome back"))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.FieldLabel.Render("Email"))
	b.WriteString("\n")
	b.WriteString(m.authInputs[authFieldEmail].View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.FieldLabel.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.authInputs[authFieldPassword].View())
	b.WriteString("\n\n")

	if m.authErr != "" {
		b.WriteString(m.styles.Error.Render(m.authErr))
		b.WriteString("\n")
	}

	switchHint := "No account? ctrl+t to sign up"
	if m.authMode == authSignUp {
		switchHint = "Have an account? ctrl+t to sign in"
	}
	b.WriteString(m.styles.Muted.Render(switchHint))
	return b.String()
}

// -----------------------------------------------------------------------------
// Compose
// -----------------------------------------------------------------------------

func (m *Model) renderCompose() string {
	var b strings.Builder

	heading := "New post"
	if m.editingID != "" {
		heading = "Edit post"
	}
	b.WriteString(m.styles.Title.Render(heading))
	b.WriteString("\n")

	b.WriteString(m.styles.FieldLabel.Render("Title"))
	b.WriteString("\n")
	b.WriteString(m.titleInput.View())
	b.WriteString("\n\n")

	b.WriteString(m.styles.FieldLabel.Render("Category"))
	b.WriteString("\n")
	for i, c := range types.Categories() {
		if i == m.composeCat {
			b.WriteString(m.styles.TabActive.Render(string(c)))
		} else {
			b.WriteString(m.styles.Tab.Render(string(c)))
		}
	}
	if m.composeFoc == composeFocusCategory {
		b.WriteString(m.styles.Prompt.Render(" ◀"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.styles.FieldLabel.Render("Content"))
	b.WriteString("\n")
	b.WriteString(m.bodyArea.View())
	b.WriteString("\n")

	if m.composeErr != "" {
		b.WriteString(m.styles.Error.Render(m.composeErr))
		b.WriteString("\n")
	}
	return b.String()
}

// -----------------------------------------------------------------------------
// Studio
// -----------------------------------------------------------------------------

func (m *Model) renderStudio() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Creator Studio"))
	b.WriteString("\n")

	mine := m.ownPosts()
	if len(mine) == 0 {
		b.WriteString(m.styles.Muted.Render("You haven't published anything yet. Press n to write your first post."))
		return b.String()
	}

	for i, post := range mine {
		cursor := "  "
		if i == m.studioCursor {
			cursor = m.styles.Prompt.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%s  %s\n", cursor,
			m.styles.Bold.Render(post.Title),
			m.styles.Muted.Render(fmt.Sprintf("%s · ♥ %d · 💬 %d",
				post.Category, post.Likes, len(post.Comments)))))
	}
	return b.String()
}

// -----------------------------------------------------------------------------
// Assistant
// -----------------------------------------------------------------------------

func (m *Model) renderAssistant() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Lumina AI"))
	b.WriteString("\n")

	// Show the tail of the conversation that fits.
	visible := m.height - 10
	if visible < 4 {
		visible = 4
	}
	start := 0
	if len(m.chatHistory) > visible {
		start = len(m.chatHistory) - visible
	}
	for _, msg := range m.chatHistory[start:] {
		if msg.Role == types.RoleUser {
			b.WriteString(m.styles.UserMessage.Render("You: " + msg.Text))
		} else {
			b.WriteString(m.styles.ModelMessage.Render(msg.Text))
		}
		b.WriteString("\n\n")
	}

	b.WriteString(m.styles.SearchBox.Render(m.chatInput.View()))
	return b.String()
}
