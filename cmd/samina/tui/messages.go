package tui

import "samina/internal/types"

// =============================================================================
// MESSAGES
// =============================================================================

// Async operations run as tea.Cmds and report back with one of these.

// postsLoadedMsg reports the outcome of a cache refresh.
type postsLoadedMsg struct {
	err error
}

// sessionChangedMsg carries the replacement identity from the session
// subscription. A nil user means signed out.
type sessionChangedMsg struct {
	user *types.User
}

// authResultMsg reports the outcome of a sign-in or sign-up attempt.
type authResultMsg struct {
	user *types.User
	err  error
}

// mutationDoneMsg reports the outcome of a post mutation (create,
// update, delete, comment).
type mutationDoneMsg struct {
	action string
	err    error
}

// likeDoneMsg reports the outcome of an optimistic like submit.
type likeDoneMsg struct {
	postID string
	err    error
}

// assistantReplyMsg carries a chat reply. The assistant never fails;
// errors surface as fallback text.
type assistantReplyMsg struct {
	text string
}

// imageAnalyzedMsg carries the vision reply for an analyzed image.
type imageAnalyzedMsg struct {
	text string
	err  error
}
