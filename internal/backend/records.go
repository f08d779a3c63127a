package backend

import (
	"time"

	"samina/internal/types"
)

// Wire shapes for the post storage boundary. Field naming follows the
// service's flat lower-snake convention; the domain model stays camelCase.

type postRecord struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Excerpt     string          `json:"excerpt"`
	Content     string          `json:"content"`
	AuthorID    string          `json:"author_id"`
	AuthorName  string          `json:"author_name"`
	Category    string          `json:"category"`
	Thumbnail   string          `json:"thumbnail"`
	CreatedAt   string          `json:"created_at"`
	Likes       int             `json:"likes"`
	Comments    []commentRecord `json:"comments"`
	Tags        []string        `json:"tags"`
	Attachments []string        `json:"attachments"`
}

type commentRecord struct {
	ID        string `json:"id"`
	PostID    string `json:"post_id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type insertPostRecord struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Excerpt     string   `json:"excerpt"`
	Category    string   `json:"category"`
	Thumbnail   string   `json:"thumbnail"`
	AuthorID    string   `json:"author_id"`
	AuthorName  string   `json:"author_name"`
	Tags        []string `json:"tags"`
	Attachments []string `json:"attachments"`
}

type updatePostRecord struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Excerpt   string `json:"excerpt"`
	Category  string `json:"category"`
	Thumbnail string `json:"thumbnail"`
}

type insertCommentRecord struct {
	PostID   string `json:"post_id"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Content  string `json:"content"`
}

func (r postRecord) toPost() types.Post {
	authorName := r.AuthorName
	if authorName == "" {
		authorName = "Unknown"
	}

	comments := make([]types.Comment, 0, len(r.Comments))
	for _, c := range r.Comments {
		comments = append(comments, c.toComment())
	}

	return types.Post{
		ID:          r.ID,
		Title:       r.Title,
		Excerpt:     r.Excerpt,
		Content:     r.Content,
		AuthorID:    r.AuthorID,
		AuthorName:  authorName,
		Category:    types.Category(r.Category),
		Thumbnail:   r.Thumbnail,
		CreatedAt:   parseTimestamp(r.CreatedAt),
		Likes:       r.Likes,
		Comments:    comments,
		Tags:        emptyIfNil(r.Tags),
		Attachments: emptyIfNil(r.Attachments),
	}
}

func (r commentRecord) toComment() types.Comment {
	userName := r.UserName
	if userName == "" {
		userName = "Anonymous"
	}
	return types.Comment{
		ID:        r.ID,
		UserID:    r.UserID,
		UserName:  userName,
		Content:   r.Content,
		CreatedAt: parseTimestamp(r.CreatedAt),
	}
}

// timestampLayouts covers the formats the service emits: RFC3339 with or
// without fractional seconds, and timestamps without a zone suffix.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
