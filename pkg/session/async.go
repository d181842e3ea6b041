package session

import (
	"context"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/async"
)

// The *Async variants draw their ticket at call time, so ordering against
// later calls such as Logout is decided when they are dispatched, not when
// their goroutine gets scheduled.

// LoginAsync runs Login in the background.
func (m *Manager) LoginAsync(ctx context.Context, creds apiclient.Credentials) *async.Future[apiclient.User] {
	t := m.begin(OpLogin)
	return async.Go(ctx, func(ctx context.Context) (apiclient.User, error) {
		return m.login(ctx, t, creds)
	})
}

// RegisterAsync runs Register in the background.
func (m *Manager) RegisterAsync(ctx context.Context, data apiclient.RegisterData) *async.Future[apiclient.User] {
	t := m.begin(OpRegister)
	return async.Go(ctx, func(ctx context.Context) (apiclient.User, error) {
		return m.register(ctx, t, data)
	})
}

// ResolveIdentityAsync runs ResolveIdentity in the background.
func (m *Manager) ResolveIdentityAsync(ctx context.Context) *async.Future[apiclient.User] {
	t := m.begin(OpResolveIdentity)
	return async.Go(ctx, func(ctx context.Context) (apiclient.User, error) {
		return m.resolveIdentity(ctx, t)
	})
}

// CheckAuthStatusAsync runs CheckAuthStatus in the background.
func (m *Manager) CheckAuthStatusAsync(ctx context.Context) *async.Future[*apiclient.User] {
	t := m.begin(OpCheckAuthStatus)
	return async.Go(ctx, func(ctx context.Context) (*apiclient.User, error) {
		return m.checkAuthStatus(ctx, t)
	})
}
