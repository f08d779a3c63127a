// Package types defines the core domain model shared across Samina:
// posts, comments, users, categories, and the shapes exchanged with the
// identity and assistant boundaries.
package types

import "time"

// =============================================================================
// CATEGORIES
// =============================================================================

// Category is the fixed set of post categories. Free-form categories are
// rejected everywhere; the backend stores the literal string value.
type Category string

const (
	CategoryArt        Category = "ART"
	CategoryScience    Category = "SCIENCE"
	CategoryTechnology Category = "TECHNOLOGY"
	CategoryCinema     Category = "CINEMA"
	CategoryDesign     Category = "DESIGN"
	CategoryFood       Category = "FOOD"
)

// Categories returns all valid categories in display order.
func Categories() []Category {
	return []Category{
		CategoryArt,
		CategoryScience,
		CategoryTechnology,
		CategoryCinema,
		CategoryDesign,
		CategoryFood,
	}
}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryArt, CategoryScience, CategoryTechnology,
		CategoryCinema, CategoryDesign, CategoryFood:
		return true
	}
	return false
}

// =============================================================================
// CORE TYPES
// =============================================================================

// User is the local identity derived from provider session claims. It is
// never persisted by Samina itself.
type User struct {
	ID     string
	Name   string
	Email  string
	Avatar string
}

// Comment is a single comment nested under a post. Comments are
// append-only from the client's perspective.
type Comment struct {
	ID        string
	UserID    string
	UserName  string
	Content   string
	CreatedAt time.Time
}

// Post is a published content item with author, category, body, and
// engagement metadata. Tags and Attachments are pass-through fields; the
// client never interprets them.
type Post struct {
	ID          string
	Title       string
	Excerpt     string
	Content     string
	AuthorID    string
	AuthorName  string
	Category    Category
	Thumbnail   string
	CreatedAt   time.Time
	Likes       int
	Comments    []Comment
	Tags        []string
	Attachments []string
}

// Draft is the author-supplied input for publishing a post. Excerpt,
// author identity, and a placeholder thumbnail are derived by the store.
type Draft struct {
	Title     string
	Content   string
	Category  Category
	Thumbnail string
}

// SessionClaims is the payload the identity boundary hands back on
// sign-in, sign-up, or session restore.
type SessionClaims struct {
	UserID      string
	Email       string
	FullName    string
	AvatarURL   string
	AccessToken string
}

// ChatMessage is one turn of the assistant conversation.
type ChatMessage struct {
	Role string // "user" or "model"
	Text string
}

// Assistant conversation roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// excerptRunes is how much of the content the excerpt keeps.
const excerptRunes = 150

// Excerpt derives a post excerpt from its content: the first 150
// characters followed by an ellipsis. Excerpts are never edited
// independently; this is the only place they are produced.
func Excerpt(content string) string {
	runes := []rune(content)
	if len(runes) > excerptRunes {
		runes = runes[:excerptRunes]
	}
	return string(runes) + "..."
}
