// Package session tracks the authenticated identity for the process
// lifetime and fans provider session changes out to subscribers.
package session

import (
	"context"
	"strings"
	"sync"

	"samina/internal/logging"
	"samina/internal/types"
)

// Provider is the identity boundary. *backend.Client implements it.
type Provider interface {
	// Restore returns the existing session's claims, or nil when there is
	// no session to resume.
	Restore(ctx context.Context) (*types.SessionClaims, error)
	SignIn(ctx context.Context, email, password string) (*types.SessionClaims, error)
	SignUp(ctx context.Context, name, email, password string) (*types.SessionClaims, error)
	SignOut(ctx context.Context) error
}

// Manager holds the current user (nil when signed out) and notifies
// subscribers whenever the identity is replaced. Each change is atomic:
// subscribers only ever see a complete identity or nil.
type Manager struct {
	provider Provider

	mu      sync.RWMutex
	current *types.User
	subs    map[int]func(*types.User)
	nextSub int
}

// NewManager creates a signed-out manager over the given provider.
func NewManager(provider Provider) *Manager {
	return &Manager{
		provider: provider,
		subs:     make(map[int]func(*types.User)),
	}
}

// Init queries the provider for an existing session. A restore failure is
// logged and leaves the manager signed out; it is not fatal.
func (m *Manager) Init(ctx context.Context) error {
	claims, err := m.provider.Restore(ctx)
	if err != nil {
		logging.SessionError("session restore failed: %v", err)
		return err
	}
	if claims == nil {
		logging.SessionDebug("no existing session")
		return nil
	}
	m.replace(UserFromClaims(claims))
	return nil
}

// Current returns the signed-in user, or nil.
func (m *Manager) Current() *types.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// SignIn delegates to the provider and, on success, replaces the local
// identity. Provider errors surface verbatim and are never retried.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*types.User, error) {
	claims, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	user := UserFromClaims(claims)
	m.replace(user)
	return user, nil
}

// SignUp registers a new account and signs it in locally.
func (m *Manager) SignUp(ctx context.Context, name, email, password string) (*types.User, error) {
	claims, err := m.provider.SignUp(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	user := UserFromClaims(claims)
	m.replace(user)
	return user, nil
}

// SignOut clears the local identity and notifies subscribers with nil so
// author-only views are forced shut. The identity is cleared even when
// the provider call fails; the error is still returned.
func (m *Manager) SignOut(ctx context.Context) error {
	err := m.provider.SignOut(ctx)
	m.replace(nil)
	return err
}

// Subscribe registers a callback for identity changes and returns its
// unsubscribe func. Callbacks receive the full replacement identity.
func (m *Manager) Subscribe(fn func(*types.User)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// replace swaps the identity atomically and notifies subscribers outside
// the lock.
func (m *Manager) replace(user *types.User) {
	m.mu.Lock()
	m.current = user
	subs := make([]func(*types.User), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	if user != nil {
		logging.Session("identity replaced: %s", user.Email)
	} else {
		logging.Session("identity cleared")
	}

	for _, fn := range subs {
		fn(user)
	}
}

// UserFromClaims maps provider claims onto the local user shape. The
// display name falls back to the email's local-part, then to "User".
func UserFromClaims(claims *types.SessionClaims) *types.User {
	name := claims.FullName
	if name == "" {
		if at := strings.Index(claims.Email, "@"); at > 0 {
			name = claims.Email[:at]
		} else {
			name = "User"
		}
	}
	return &types.User{
		ID:     claims.UserID,
		Name:   name,
		Email:  claims.Email,
		Avatar: claims.AvatarURL,
	}
}
