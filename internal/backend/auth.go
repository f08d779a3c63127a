package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"samina/internal/logging"
	"samina/internal/types"
)

// Identity boundary (/auth/v1). The Client implements session.Provider:
// Restore, SignIn, SignUp, SignOut. Sign-in and sign-up store the access
// token on the client so store calls run authorized; sign-out clears it.

type userRecord struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName  string `json:"full_name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
}

type tokenResponse struct {
	AccessToken string     `json:"access_token"`
	User        userRecord `json:"user"`
}

type signUpResponse struct {
	AccessToken string      `json:"access_token"`
	User        *userRecord `json:"user"`

	// The identity service flattens the user into the top level when
	// email confirmation is pending.
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName  string `json:"full_name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
}

func (r userRecord) toClaims(token string) *types.SessionClaims {
	return &types.SessionClaims{
		UserID:      r.ID,
		Email:       r.Email,
		FullName:    r.UserMetadata.FullName,
		AvatarURL:   r.UserMetadata.AvatarURL,
		AccessToken: token,
	}
}

// Restore returns the claims for a pre-configured access token, or nil
// when there is no session to restore. Sessions are never read from disk;
// an expired or rejected token simply yields a signed-out start.
func (c *Client) Restore(ctx context.Context) (*types.SessionClaims, error) {
	token := c.AccessToken()
	if token == "" {
		return nil, nil
	}

	var user userRecord
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, nil, &user, ""); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
			logging.Session("configured access token rejected, starting signed out")
			c.SetAccessToken("")
			return nil, nil
		}
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return user.toClaims(token), nil
}

// SignIn exchanges credentials for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*types.SessionClaims, error) {
	query := url.Values{}
	query.Set("grant_type", "password")

	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token", query, body, &resp, ""); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	c.SetAccessToken(resp.AccessToken)
	logging.Session("signed in as %s", resp.User.Email)
	return resp.User.toClaims(resp.AccessToken), nil
}

// SignUp registers a new account with display-name and avatar metadata.
// The avatar is seeded from the chosen name.
func (c *Client) SignUp(ctx context.Context, name, email, password string) (*types.SessionClaims, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
		"data": map[string]string{
			"full_name":  name,
			"avatar_url": "https://api.dicebear.com/7.x/initials/svg?seed=" + url.QueryEscape(name),
		},
	}

	var resp signUpResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", nil, body, &resp, ""); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	user := resp.User
	if user == nil {
		flat := userRecord{ID: resp.ID, Email: resp.Email}
		flat.UserMetadata = resp.UserMetadata
		user = &flat
	}

	if resp.AccessToken != "" {
		c.SetAccessToken(resp.AccessToken)
	}
	logging.Session("signed up %s", user.Email)
	return user.toClaims(resp.AccessToken), nil
}

// SignOut revokes the session at the provider. The local token is cleared
// even when the remote call fails.
func (c *Client) SignOut(ctx context.Context) error {
	if c.AccessToken() == "" {
		return nil
	}
	defer c.SetAccessToken("")

	if err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, nil, ""); err != nil {
		logging.SessionError("remote sign-out failed: %v", err)
		return fmt.Errorf("sign out: %w", err)
	}
	logging.Session("signed out")
	return nil
}
