package apiclient

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/storefront/pkg/logger"
)

// Authenticator is the credential holder the refresh policy consults.
// session.Manager implements it.
type Authenticator interface {
	// Token returns the currently held pair, if any.
	Token() (TokenPair, bool)
	// Refresh exchanges the held refresh token and commits the new pair.
	// It returns an error wrapping ErrSuperseded when the session changed
	// while the exchange was in flight.
	Refresh(ctx context.Context) (TokenPair, error)
	// Logout tears the session down. It never fails.
	Logout()
}

// Authorized wraps a Client with the bearer-token and refresh-on-401 policy.
type Authorized struct {
	client    *Client
	auth      Authenticator
	onExpired func(error)
	log       *slog.Logger
}

// AuthorizedOption configures an Authorized decorator.
type AuthorizedOption func(*Authorized)

// OnSessionExpired registers a hook that runs after a failed refresh has torn
// the session down. Callers use it to send the user back to login.
func OnSessionExpired(fn func(error)) AuthorizedOption {
	return func(a *Authorized) {
		a.onExpired = fn
	}
}

// WithAuthorizedLogger overrides the logger inherited from the wrapped Client.
func WithAuthorizedLogger(l *slog.Logger) AuthorizedOption {
	return func(a *Authorized) {
		if l != nil {
			a.log = l
		}
	}
}

// NewAuthorized wraps client so that requests carry the access token held by
// auth and recover from a single 401 by refreshing it.
func NewAuthorized(client *Client, auth Authenticator, opts ...AuthorizedOption) *Authorized {
	a := &Authorized{
		client: client,
		auth:   auth,
		log:    client.log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Client returns the underlying unauthenticated client.
func (a *Authorized) Client() *Client {
	return a.client
}

// Do sends req with the held access token. On a 401 it refreshes once and
// replays once. A request sent without credentials is never retried.
// The session is torn down only when the refresh itself is refused; a
// superseded refresh or the caller's own cancellation leaves it alone.
func (a *Authorized) Do(ctx context.Context, req Request, out any) error {
	pair, ok := a.auth.Token()
	if ok {
		req.Auth = &pair
	}

	err := a.client.Do(ctx, req, out)
	if !ok || !IsUnauthorized(err) {
		return err
	}

	fresh, rerr := a.auth.Refresh(ctx)
	if rerr != nil {
		if errors.Is(rerr, ErrSuperseded) {
			return errors.Join(err, rerr)
		}
		// The caller gave up; that says nothing about the session.
		if cerr := ctx.Err(); cerr != nil {
			return errors.Join(err, cerr)
		}
		a.log.WarnContext(ctx, "token refresh failed, ending session",
			logger.Method(req.Method), logger.Path(req.Path), logger.Error(rerr))
		a.auth.Logout()
		if a.onExpired != nil {
			a.onExpired(rerr)
		}
		return errors.Join(ErrSessionExpired, rerr)
	}

	req.Auth = &fresh
	return a.client.Do(ctx, req, out)
}

// Validate checks a payload with the underlying client's validator.
func (a *Authorized) Validate(v any) error {
	return a.client.Validate(v)
}
