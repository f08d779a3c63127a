// Package backend is the typed gateway to the hosted persistence and
// identity service. It owns the bidirectional mapping between the wire
// format (flat, lower-snake fields) and the in-memory domain model, and
// nothing else: no caching, no business rules.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"samina/internal/logging"
	"samina/internal/types"
)

// ErrNotFound is returned when a row-scoped operation matched no rows.
var ErrNotFound = errors.New("backend: not found")

// APIError carries the service's human-readable failure message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend request failed with status %d", e.Status)
}

// Client talks to the hosted backend. One instance is shared by the post
// store and the session manager; the access token set on sign-in
// authorizes subsequent store calls.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client

	mu          sync.RWMutex
	accessToken string
}

// NewClient creates a gateway for the service at baseURL.
func NewClient(baseURL, anonKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetAccessToken replaces the bearer token used for authorized calls.
// An empty token falls back to anonymous access.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

// AccessToken returns the current bearer token ("" when signed out).
func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// do issues a JSON request and decodes the response into out (if non-nil).
// prefer, when set, is sent as the Prefer header (PostgREST semantics).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, prefer string) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.bearerToken())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.BackendError("%s %s failed: %v", method, path, err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	logging.BackendDebug("%s %s -> %d in %v", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: serviceMessage(data)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func (c *Client) bearerToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.accessToken != "" {
		return c.accessToken
	}
	return c.anonKey
}

// serviceMessage pulls the human-readable message out of an error body.
// The store surface uses "message", the identity surface "msg" or
// "error_description".
func serviceMessage(data []byte) string {
	var body struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return strings.TrimSpace(string(data))
	}
	switch {
	case body.Message != "":
		return body.Message
	case body.Msg != "":
		return body.Msg
	case body.ErrorDescription != "":
		return body.ErrorDescription
	}
	return strings.TrimSpace(string(data))
}

// =============================================================================
// POST STORAGE BOUNDARY (/rest/v1)
// =============================================================================

// ListPosts fetches all posts with nested comments, newest first.
func (c *Client) ListPosts(ctx context.Context) ([]types.Post, error) {
	query := url.Values{}
	query.Set("select", "*,comments(*)")
	query.Set("order", "created_at.desc")

	var records []postRecord
	if err := c.do(ctx, http.MethodGet, "/rest/v1/posts", query, nil, &records, ""); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]types.Post, 0, len(records))
	for _, r := range records {
		posts = append(posts, r.toPost())
	}
	return posts, nil
}

// InsertPost submits a new post. The server assigns id, created_at, and
// the initial like count.
func (c *Client) InsertPost(ctx context.Context, post types.Post) error {
	rec := insertPostRecord{
		Title:       post.Title,
		Content:     post.Content,
		Excerpt:     post.Excerpt,
		Category:    string(post.Category),
		Thumbnail:   post.Thumbnail,
		AuthorID:    post.AuthorID,
		AuthorName:  post.AuthorName,
		Tags:        emptyIfNil(post.Tags),
		Attachments: emptyIfNil(post.Attachments),
	}
	if err := c.do(ctx, http.MethodPost, "/rest/v1/posts", nil, rec, nil, "return=minimal"); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// UpdatePost rewrites the editable field set of the post with the given id.
func (c *Client) UpdatePost(ctx context.Context, post types.Post) error {
	query := url.Values{}
	query.Set("id", "eq."+post.ID)

	rec := updatePostRecord{
		Title:     post.Title,
		Content:   post.Content,
		Excerpt:   post.Excerpt,
		Category:  string(post.Category),
		Thumbnail: post.Thumbnail,
	}
	if err := c.do(ctx, http.MethodPatch, "/rest/v1/posts", query, rec, nil, "return=minimal"); err != nil {
		return fmt.Errorf("update post %s: %w", post.ID, err)
	}
	return nil
}

// UpdatePostLikes submits an absolute like count for the post.
func (c *Client) UpdatePostLikes(ctx context.Context, id string, likes int) error {
	query := url.Values{}
	query.Set("id", "eq."+id)

	body := map[string]int{"likes": likes}
	if err := c.do(ctx, http.MethodPatch, "/rest/v1/posts", query, body, nil, "return=minimal"); err != nil {
		return fmt.Errorf("update likes for %s: %w", id, err)
	}
	return nil
}

// DeletePost deletes the post with the given id. Deleting an id that does
// not exist returns ErrNotFound.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	query := url.Values{}
	query.Set("id", "eq."+id)

	var deleted []postRecord
	if err := c.do(ctx, http.MethodDelete, "/rest/v1/posts", query, nil, &deleted, "return=representation"); err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	if len(deleted) == 0 {
		return fmt.Errorf("delete post %s: %w", id, ErrNotFound)
	}
	return nil
}

// InsertComment appends a comment row under the given post.
func (c *Client) InsertComment(ctx context.Context, postID string, comment types.Comment) error {
	rec := insertCommentRecord{
		PostID:   postID,
		UserID:   comment.UserID,
		UserName: comment.UserName,
		Content:  comment.Content,
	}
	if err := c.do(ctx, http.MethodPost, "/rest/v1/comments", nil, rec, nil, "return=minimal"); err != nil {
		return fmt.Errorf("insert comment on %s: %w", postID, err)
	}
	return nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
