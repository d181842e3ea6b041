package apiclient

import (
	"context"
	"net/http"
	"net/url"
)

// Login exchanges credentials for a token pair (form-encoded, OAuth2
// password-grant style).
func (c *Client) Login(ctx context.Context, creds Credentials) (TokenPair, error) {
	var pair TokenPair
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Form: url.Values{
			"username": {creds.Username},
			"password": {creds.Password},
		},
	}, &pair)
	return pair, err
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, data RegisterData) (User, error) {
	var user User
	if err := c.Validate(data); err != nil {
		return user, err
	}
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		JSON:   data,
	}, &user)
	return user, err
}

// Me resolves the identity behind an access token.
func (c *Client) Me(ctx context.Context, pair TokenPair) (User, error) {
	var user User
	if !pair.Valid() {
		return user, ErrNoCredentials
	}
	err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/auth/me",
		Auth:   &pair,
	}, &user)
	return user, err
}

// Refresh exchanges a refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	var pair TokenPair
	if refreshToken == "" {
		return pair, ErrNoCredentials
	}
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/refresh",
		JSON:   map[string]string{"refresh_token": refreshToken},
	}, &pair)
	return pair, err
}
