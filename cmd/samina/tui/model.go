// Package tui provides the interactive terminal interface for Samina.
// The interface is split across files:
//   - model.go: Types, Init, Update loop (this file)
//   - commands.go: Async operations as tea.Cmds
//   - messages.go: Typed messages the commands produce
//   - view.go: Rendering functions
//
// Presentation only: every post and session mutation goes through the
// store and session manager.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"samina/cmd/samina/ui"
	"samina/internal/assistant"
	"samina/internal/filter"
	"samina/internal/logging"
	"samina/internal/session"
	"samina/internal/store"
	"samina/internal/types"
)

// =============================================================================
// CORE TYPES
// =============================================================================

// ViewMode determines which screen is active.
type ViewMode int

const (
	FeedView ViewMode = iota
	PostView
	AuthView
	ComposeView
	StudioView
	AssistantView
)

// authMode selects between the sign-in and sign-up forms.
type authMode int

const (
	authSignIn authMode = iota
	authSignUp
)

// Auth form field indices.
const (
	authFieldName = iota
	authFieldEmail
	authFieldPassword
)

// Model is the main model for the interactive interface.
type Model struct {
	// Core
	posts     *store.Store
	sessions  *session.Manager
	assistant *assistant.Assistant // nil when unconfigured

	// Session subscription
	sessionCh   chan *types.User
	unsubscribe func()

	// UI components
	styles   ui.Styles
	renderer *glamour.TermRenderer
	spinner  spinner.Model
	viewport viewport.Model

	viewMode ViewMode
	width    int
	height   int
	ready    bool

	// Feed state
	categoryIdx int // 0 = All, then types.Categories() order
	cursor      int
	searchInput textinput.Model
	searching   bool

	// Post view state
	openPostID   string
	commentInput textinput.Model
	commenting   bool

	// Auth form state
	authMode   authMode
	authInputs []textinput.Model
	authFocus  int
	authErr    string

	// Compose state
	titleInput  textinput.Model
	bodyArea    textarea.Model
	composeCat  int
	composeFoc  int
	editingID   string // "" when publishing new
	composeErr  string

	// Studio state
	studioCursor int

	// Assistant state
	chatHistory []types.ChatMessage
	chatInput   textinput.Model

	// Status
	isLoading bool
	status    string
	errText   string
}

// New builds the model and wires the session subscription. The channel
// is buffered and the callback never blocks, so a slow UI cannot stall
// the session manager.
func New(posts *store.Store, sessions *session.Manager, assist *assistant.Assistant, styles ui.Styles) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	search := textinput.New()
	search.Placeholder = "Search posts..."
	search.CharLimit = 100

	comment := textinput.New()
	comment.Placeholder = "Add a comment..."
	comment.CharLimit = 500

	chat := textinput.New()
	chat.Placeholder = "Ask Lumina anything, or /analyze <image path>"
	chat.CharLimit = 1000

	title := textinput.New()
	title.Placeholder = "Post title"
	title.CharLimit = 200

	body := textarea.New()
	body.Placeholder = "Write your post..."
	body.CharLimit = 0

	authInputs := make([]textinput.Model, 3)
	for i := range authInputs {
		authInputs[i] = textinput.New()
	}
	authInputs[authFieldName].Placeholder = "Full name"
	authInputs[authFieldEmail].Placeholder = "Email"
	authInputs[authFieldPassword].Placeholder = "Password"
	authInputs[authFieldPassword].EchoMode = textinput.EchoPassword

	m := &Model{
		posts:        posts,
		sessions:     sessions,
		assistant:    assist,
		sessionCh:    make(chan *types.User, 8),
		styles:       styles,
		spinner:      sp,
		searchInput:  search,
		commentInput: comment,
		chatInput:    chat,
		titleInput:   title,
		bodyArea:     body,
		authInputs:   authInputs,
		chatHistory: []types.ChatMessage{
			{Role: types.RoleModel, Text: "Hi! I am Lumina AI. How can I help you today? I can help brainstorm blog ideas or explain anything from our categories."},
		},
	}
	m.unsubscribe = sessions.Subscribe(func(u *types.User) {
		select {
		case m.sessionCh <- u:
		default:
			logging.UIDebug("dropped session notification, channel full")
		}
	})
	return m
}

// Shutdown releases the session subscription. Safe to call after quit.
func (m *Model) Shutdown() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Init loads the feed and starts listening for session changes.
func (m *Model) Init() tea.Cmd {
	m.isLoading = true
	return tea.Batch(m.spinner.Tick, m.refreshPostsCmd(), m.waitForSessionCmd())
}

// Run starts the interface and blocks until quit.
func Run(posts *store.Store, sessions *session.Manager, assist *assistant.Assistant) error {
	m := New(posts, sessions, assist, ui.DefaultStyles())
	defer m.Shutdown()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// =============================================================================
// UPDATE
// =============================================================================

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(msg.Width-4, msg.Height-8)
		m.bodyArea.SetWidth(msg.Width - 8)
		m.bodyArea.SetHeight(msg.Height / 2)
		if r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(msg.Width-6),
		); err == nil {
			m.renderer = r
		}
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		if !m.isLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case postsLoadedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.errText = fmt.Sprintf("Couldn't load posts: %v", msg.err)
			return m, nil
		}
		m.errText = ""
		m.clampCursor()
		if m.viewMode == PostView {
			m.syncOpenPost()
		}
		return m, nil

	case sessionChangedMsg:
		// Losing the session forces the author-only views shut.
		if msg.user == nil && (m.viewMode == ComposeView || m.viewMode == StudioView) {
			m.viewMode = FeedView
			m.status = "Signed out"
		}
		return m, m.waitForSessionCmd()

	case authResultMsg:
		m.isLoading = false
		if msg.err != nil {
			m.authErr = msg.err.Error()
			return m, nil
		}
		m.authErr = ""
		m.resetAuthForm()
		m.viewMode = FeedView
		m.status = "Welcome, " + msg.user.Name
		return m, nil

	case mutationDoneMsg:
		m.isLoading = false
		if msg.err != nil {
			if msg.err == store.ErrSignInRequired {
				m.viewMode = AuthView
				return m, nil
			}
			m.errText = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
			return m, nil
		}
		m.errText = ""
		m.status = msg.action + " done"
		if m.viewMode == ComposeView {
			m.resetComposeForm()
			m.viewMode = StudioView
		}
		m.clampCursor()
		if m.viewMode == PostView {
			m.syncOpenPost()
		}
		return m, nil

	case likeDoneMsg:
		if msg.err == store.ErrSignInRequired {
			m.viewMode = AuthView
			return m, nil
		}
		if msg.err != nil {
			m.errText = fmt.Sprintf("Like failed: %v", msg.err)
		}
		if m.viewMode == PostView {
			m.syncOpenPost()
		}
		return m, nil

	case assistantReplyMsg:
		m.isLoading = false
		m.chatHistory = append(m.chatHistory, types.ChatMessage{Role: types.RoleModel, Text: msg.text})
		return m, nil

	case imageAnalyzedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.chatHistory = append(m.chatHistory, types.ChatMessage{Role: types.RoleModel, Text: "I couldn't read that file: " + msg.err.Error()})
			return m, nil
		}
		m.chatHistory = append(m.chatHistory, types.ChatMessage{Role: types.RoleModel, Text: msg.text})
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.Shutdown()
		return m, tea.Quit
	}

	switch m.viewMode {
	case FeedView:
		return m.updateFeed(msg)
	case PostView:
		return m.updatePost(msg)
	case AuthView:
		return m.updateAuth(msg)
	case ComposeView:
		return m.updateCompose(msg)
	case StudioView:
		return m.updateStudio(msg)
	case AssistantView:
		return m.updateAssistant(msg)
	}
	return m, nil
}

// -----------------------------------------------------------------------------
// Feed
// -----------------------------------------------------------------------------

func (m *Model) updateFeed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.Type {
		case tea.KeyEsc:
			m.searching = false
			m.searchInput.Blur()
			m.searchInput.SetValue("")
		case tea.KeyEnter:
			m.searching = false
			m.searchInput.Blur()
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			m.clampCursor()
			return m, cmd
		}
		m.clampCursor()
		return m, nil
	}

	switch msg.String() {
	case "q":
		m.Shutdown()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visiblePosts())-1 {
			m.cursor++
		}
	case "left", "h":
		if m.categoryIdx > 0 {
			m.categoryIdx--
		}
		m.clampCursor()
	case "right", "l", "tab":
		if m.categoryIdx < len(types.Categories()) {
			m.categoryIdx++
		} else {
			m.categoryIdx = 0
		}
		m.clampCursor()
	case "/":
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink
	case "enter":
		if posts := m.visiblePosts(); m.cursor < len(posts) {
			m.openPostID = posts[m.cursor].ID
			m.viewMode = PostView
			m.syncOpenPost()
		}
	case "r":
		m.isLoading = true
		return m, tea.Batch(m.spinner.Tick, m.refreshPostsCmd())
	case "n":
		if m.sessions.Current() == nil {
			m.viewMode = AuthView
			return m, m.focusAuthField(authFieldEmail)
		}
		m.resetComposeForm()
		m.viewMode = ComposeView
		return m, m.focusCompose(0)
	case "s":
		if m.sessions.Current() == nil {
			m.viewMode = AuthView
			return m, m.focusAuthField(authFieldEmail)
		}
		m.studioCursor = 0
		m.viewMode = StudioView
	case "a":
		m.viewMode = AssistantView
		m.chatInput.Focus()
		return m, textinput.Blink
	case "i":
		if m.sessions.Current() == nil {
			m.viewMode = AuthView
			return m, m.focusAuthField(authFieldEmail)
		}
		return m, m.signOutCmd()
	}
	return m, nil
}

// -----------------------------------------------------------------------------
// Single post
// -----------------------------------------------------------------------------

func (m *Model) updatePost(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.commenting {
		switch msg.Type {
		case tea.KeyEsc:
			m.commenting = false
			m.commentInput.Blur()
			m.commentInput.SetValue("")
			return m, nil
		case tea.KeyEnter:
			content := strings.TrimSpace(m.commentInput.Value())
			m.commenting = false
			m.commentInput.Blur()
			m.commentInput.SetValue("")
			if content == "" {
				return m, nil
			}
			if m.sessions.Current() == nil {
				m.viewMode = AuthView
				return m, m.focusAuthField(authFieldEmail)
			}
			m.isLoading = true
			return m, tea.Batch(m.spinner.Tick, m.commentCmd(m.openPostID, content))
		default:
			var cmd tea.Cmd
			m.commentInput, cmd = m.commentInput.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "esc", "q":
		m.viewMode = FeedView
	case "l":
		return m, m.likePostCmd(m.openPostID)
	case "c":
		m.commenting = true
		m.commentInput.Focus()
		return m, textinput.Blink
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// -----------------------------------------------------------------------------
// Auth form
// -----------------------------------------------------------------------------

func (m *Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.resetAuthForm()
		m.viewMode = FeedView
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.focusAuthField(m.nextAuthField(1))
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.focusAuthField(m.nextAuthField(-1))
	case tea.KeyEnter:
		email := strings.TrimSpace(m.authInputs[authFieldEmail].Value())
		password := m.authInputs[authFieldPassword].Value()
		if email == "" || password == "" {
			m.authErr = "Email and password are required"
			return m, nil
		}
		m.isLoading = true
		if m.authMode == authSignUp {
			name := strings.TrimSpace(m.authInputs[authFieldName].Value())
			return m, tea.Batch(m.spinner.Tick, m.signUpCmd(name, email, password))
		}
		return m, tea.Batch(m.spinner.Tick, m.signInCmd(email, password))
	case tea.KeyCtrlT:
		if m.authMode == authSignIn {
			m.authMode = authSignUp
			return m, m.focusAuthField(authFieldName)
		}
		m.authMode = authSignIn
		return m, m.focusAuthField(authFieldEmail)
	}

	var cmd tea.Cmd
	m.authInputs[m.authFocus], cmd = m.authInputs[m.authFocus].Update(msg)
	return m, cmd
}

func (m *Model) nextAuthField(delta int) int {
	fields := []int{authFieldEmail, authFieldPassword}
	if m.authMode == authSignUp {
		fields = []int{authFieldName, authFieldEmail, authFieldPassword}
	}
	cur := 0
	for i, f := range fields {
		if f == m.authFocus {
			cur = i
			break
		}
	}
	return fields[(cur+delta+len(fields))%len(fields)]
}

func (m *Model) focusAuthField(field int) tea.Cmd {
	for i := range m.authInputs {
		m.authInputs[i].Blur()
	}
	m.authFocus = field
	m.authInputs[field].Focus()
	return textinput.Blink
}

func (m *Model) resetAuthForm() {
	for i := range m.authInputs {
		m.authInputs[i].Blur()
		m.authInputs[i].SetValue("")
	}
	m.authErr = ""
	m.authMode = authSignIn
	m.authFocus = authFieldEmail
}

// -----------------------------------------------------------------------------
// Compose
// -----------------------------------------------------------------------------

// Compose focus targets: title, category picker, body.
const (
	composeFocusTitle = iota
	composeFocusCategory
	composeFocusBody
)

func (m *Model) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.resetComposeForm()
		m.viewMode = StudioView
		return m, nil
	case tea.KeyTab:
		return m, m.focusCompose((m.composeFoc + 1) % 3)
	case tea.KeyShiftTab:
		return m, m.focusCompose((m.composeFoc + 2) % 3)
	case tea.KeyCtrlD:
		return m.submitCompose()
	}

	switch m.composeFoc {
	case composeFocusTitle:
		if msg.Type == tea.KeyEnter {
			return m, m.focusCompose(composeFocusCategory)
		}
		var cmd tea.Cmd
		m.titleInput, cmd = m.titleInput.Update(msg)
		return m, cmd
	case composeFocusCategory:
		switch msg.String() {
		case "left", "h", "up", "k":
			m.composeCat = (m.composeCat + len(types.Categories()) - 1) % len(types.Categories())
		case "right", "l", "down", "j", "enter":
			if msg.Type == tea.KeyEnter {
				return m, m.focusCompose(composeFocusBody)
			}
			m.composeCat = (m.composeCat + 1) % len(types.Categories())
		}
		return m, nil
	case composeFocusBody:
		var cmd tea.Cmd
		m.bodyArea, cmd = m.bodyArea.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) submitCompose() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.titleInput.Value())
	content := strings.TrimSpace(m.bodyArea.Value())
	if title == "" || content == "" {
		m.composeErr = "Title and content are required"
		return m, nil
	}
	category := types.Categories()[m.composeCat]
	m.isLoading = true
	m.composeErr = ""

	if m.editingID != "" {
		post, ok := m.posts.Get(m.editingID)
		if !ok {
			m.composeErr = "Post no longer exists"
			m.isLoading = false
			return m, nil
		}
		post.Title = title
		post.Content = content
		post.Category = category
		return m, tea.Batch(m.spinner.Tick, m.updatePostCmd(post))
	}

	draft := types.Draft{Title: title, Content: content, Category: category}
	return m, tea.Batch(m.spinner.Tick, m.createPostCmd(draft))
}

func (m *Model) focusCompose(target int) tea.Cmd {
	m.composeFoc = target
	m.titleInput.Blur()
	m.bodyArea.Blur()
	switch target {
	case composeFocusTitle:
		m.titleInput.Focus()
		return textinput.Blink
	case composeFocusBody:
		return m.bodyArea.Focus()
	}
	return nil
}

func (m *Model) resetComposeForm() {
	m.titleInput.SetValue("")
	m.bodyArea.SetValue("")
	m.composeCat = 0
	m.composeFoc = composeFocusTitle
	m.editingID = ""
	m.composeErr = ""
}

// -----------------------------------------------------------------------------
// Studio
// -----------------------------------------------------------------------------

func (m *Model) updateStudio(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mine := m.ownPosts()

	switch msg.String() {
	case "esc", "q":
		m.viewMode = FeedView
	case "up", "k":
		if m.studioCursor > 0 {
			m.studioCursor--
		}
	case "down", "j":
		if m.studioCursor < len(mine)-1 {
			m.studioCursor++
		}
	case "n":
		m.resetComposeForm()
		m.viewMode = ComposeView
		return m, m.focusCompose(composeFocusTitle)
	case "e":
		if m.studioCursor < len(mine) {
			post := mine[m.studioCursor]
			m.resetComposeForm()
			m.editingID = post.ID
			m.titleInput.SetValue(post.Title)
			m.bodyArea.SetValue(post.Content)
			for i, c := range types.Categories() {
				if c == post.Category {
					m.composeCat = i
					break
				}
			}
			m.viewMode = ComposeView
			return m, m.focusCompose(composeFocusTitle)
		}
	case "d":
		if m.studioCursor < len(mine) {
			m.isLoading = true
			return m, tea.Batch(m.spinner.Tick, m.deletePostCmd(mine[m.studioCursor].ID))
		}
	}
	return m, nil
}

// -----------------------------------------------------------------------------
// Assistant
// -----------------------------------------------------------------------------

func (m *Model) updateAssistant(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.chatInput.Blur()
		m.viewMode = FeedView
		return m, nil
	case tea.KeyEnter:
		input := strings.TrimSpace(m.chatInput.Value())
		if input == "" {
			return m, nil
		}
		m.chatInput.SetValue("")
		if m.assistant == nil {
			m.chatHistory = append(m.chatHistory, types.ChatMessage{
				Role: types.RoleModel,
				Text: "The assistant is not configured. Set GEMINI_API_KEY and restart.",
			})
			return m, nil
		}
		if path, ok := strings.CutPrefix(input, "/analyze "); ok {
			m.chatHistory = append(m.chatHistory, types.ChatMessage{Role: types.RoleUser, Text: input})
			m.isLoading = true
			return m, tea.Batch(m.spinner.Tick, m.analyzeImageCmd(strings.TrimSpace(path)))
		}
		history := make([]types.ChatMessage, len(m.chatHistory))
		copy(history, m.chatHistory)
		m.chatHistory = append(m.chatHistory, types.ChatMessage{Role: types.RoleUser, Text: input})
		m.isLoading = true
		return m, tea.Batch(m.spinner.Tick, m.askAssistantCmd(input, history))
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

// =============================================================================
// HELPERS
// =============================================================================

// activeCategory maps the tab index onto a filter category; index 0 is
// the synthetic "All" tab.
func (m *Model) activeCategory() types.Category {
	if m.categoryIdx == 0 {
		return filter.CategoryAll
	}
	return types.Categories()[m.categoryIdx-1]
}

func (m *Model) visiblePosts() []types.Post {
	return filter.Visible(m.posts.Posts(), m.activeCategory(), m.searchInput.Value())
}

func (m *Model) ownPosts() []types.Post {
	user := m.sessions.Current()
	if user == nil {
		return nil
	}
	return m.posts.ByAuthor(user.ID)
}

func (m *Model) clampCursor() {
	if n := len(m.visiblePosts()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

// syncOpenPost re-renders the viewport from the cached copy of the open
// post, falling back to the feed when it disappeared.
func (m *Model) syncOpenPost() {
	post, ok := m.posts.Get(m.openPostID)
	if !ok {
		m.viewMode = FeedView
		return
	}
	m.viewport.SetContent(m.renderPostContent(post))
}
