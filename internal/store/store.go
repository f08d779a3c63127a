// Package store is the in-memory post cache and the single mutation path
// for post state. All remote effects go through the gateway; the cache is
// only updated from gateway results or by the optimistic like protocol.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"samina/internal/logging"
	"samina/internal/session"
	"samina/internal/types"
)

// ErrSignInRequired is returned by mutations that need an authenticated
// session. The presentation layer redirects to the sign-in view on it.
var ErrSignInRequired = errors.New("store: sign in required")

// Gateway is the remote persistence surface the store depends on.
// *backend.Client implements it.
type Gateway interface {
	ListPosts(ctx context.Context) ([]types.Post, error)
	InsertPost(ctx context.Context, post types.Post) error
	UpdatePost(ctx context.Context, post types.Post) error
	UpdatePostLikes(ctx context.Context, id string, likes int) error
	DeletePost(ctx context.Context, id string) error
	InsertComment(ctx context.Context, postID string, comment types.Comment) error
}

// Store caches the full post list and applies mutations through the
// gateway. The mutex guards the cache; remote calls run outside it, so
// concurrent refreshes are last-write-wins.
type Store struct {
	gw       Gateway
	sessions *session.Manager

	mu    sync.RWMutex
	posts []types.Post
}

// New creates an empty store over the given gateway and session manager.
func New(gw Gateway, sessions *session.Manager) *Store {
	return &Store{gw: gw, sessions: sessions}
}

// Refresh replaces the cache with the gateway's current post list. On
// failure the cache keeps its last-known-good contents and the error is
// returned.
func (s *Store) Refresh(ctx context.Context) error {
	posts, err := s.gw.ListPosts(ctx)
	if err != nil {
		logging.StoreError("refresh failed, keeping %d cached posts: %v", len(s.Posts()), err)
		return fmt.Errorf("refresh posts: %w", err)
	}

	s.mu.Lock()
	s.posts = posts
	s.mu.Unlock()

	logging.Store("refreshed %d posts", len(posts))
	return nil
}

// Posts returns a snapshot of the cached post list.
func (s *Store) Posts() []types.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// Get returns the cached post with the given id.
func (s *Store) Get(id string) (types.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	return types.Post{}, false
}

// ByAuthor returns the cached posts authored by the given user, in cache
// order.
func (s *Store) ByAuthor(authorID string) []types.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Post, 0)
	for _, p := range s.posts {
		if p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	return out
}

// Create publishes a draft as the signed-in user. The excerpt is derived
// from the content, a placeholder thumbnail is assigned when the draft
// has none, and the cache is refreshed on success.
func (s *Store) Create(ctx context.Context, draft types.Draft) error {
	user := s.sessions.Current()
	if user == nil {
		return ErrSignInRequired
	}

	thumbnail := draft.Thumbnail
	if thumbnail == "" {
		thumbnail = "https://picsum.photos/800/600?random=" + uuid.NewString()
	}

	post := types.Post{
		Title:       draft.Title,
		Content:     draft.Content,
		Excerpt:     types.Excerpt(draft.Content),
		Category:    draft.Category,
		Thumbnail:   thumbnail,
		AuthorID:    user.ID,
		AuthorName:  user.Name,
		Tags:        []string{},
		Attachments: []string{},
	}

	if err := s.gw.InsertPost(ctx, post); err != nil {
		logging.StoreError("create failed: %v", err)
		return err
	}
	logging.Store("created post %q by %s", post.Title, user.Name)
	return s.Refresh(ctx)
}

// Update rewrites a post's editable fields. The excerpt is recomputed
// from the new content; the cache is refreshed on success.
func (s *Store) Update(ctx context.Context, post types.Post) error {
	user := s.sessions.Current()
	if user == nil {
		return ErrSignInRequired
	}

	post.Excerpt = types.Excerpt(post.Content)
	if err := s.gw.UpdatePost(ctx, post); err != nil {
		logging.StoreError("update %s failed: %v", post.ID, err)
		return err
	}
	logging.Store("updated post %s", post.ID)
	return s.Refresh(ctx)
}

// Delete removes a post. On success the post is dropped from the cache
// directly, without a refresh round-trip; on failure the cache is left
// unchanged and the gateway error is returned.
func (s *Store) Delete(ctx context.Context, id string) error {
	user := s.sessions.Current()
	if user == nil {
		return ErrSignInRequired
	}

	if err := s.gw.DeletePost(ctx, id); err != nil {
		logging.StoreError("delete %s failed: %v", id, err)
		return err
	}

	s.mu.Lock()
	kept := s.posts[:0]
	for _, p := range s.posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.posts = kept
	s.mu.Unlock()

	logging.Store("deleted post %s", id)
	return nil
}

// Like applies a two-phase optimistic like: bump the cached count, then
// submit the new absolute value. On submit failure the snapshot count is
// restored. There is no per-user dedup; every call adds one.
func (s *Store) Like(ctx context.Context, id string) error {
	if s.sessions.Current() == nil {
		return ErrSignInRequired
	}

	s.mu.Lock()
	idx := -1
	for i := range s.posts {
		if s.posts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("like %s: post not cached", id)
	}
	snapshot := s.posts[idx].Likes
	s.posts[idx].Likes = snapshot + 1
	s.mu.Unlock()

	if err := s.gw.UpdatePostLikes(ctx, id, snapshot+1); err != nil {
		s.mu.Lock()
		for i := range s.posts {
			if s.posts[i].ID == id {
				s.posts[i].Likes = snapshot
				break
			}
		}
		s.mu.Unlock()
		logging.StoreError("like %s failed, rolled back to %d: %v", id, snapshot, err)
		return err
	}

	logging.StoreDebug("liked post %s (%d)", id, snapshot+1)
	return nil
}

// Comment appends a comment as the signed-in user and refreshes on
// success. Without a session the call is a silent no-op.
func (s *Store) Comment(ctx context.Context, postID, content string) error {
	user := s.sessions.Current()
	if user == nil {
		logging.StoreDebug("comment on %s dropped: signed out", postID)
		return nil
	}

	comment := types.Comment{
		UserID:   user.ID,
		UserName: user.Name,
		Content:  content,
	}
	if err := s.gw.InsertComment(ctx, postID, comment); err != nil {
		logging.StoreError("comment on %s failed: %v", postID, err)
		return err
	}
	logging.Store("commented on %s as %s", postID, user.Name)
	return s.Refresh(ctx)
}
