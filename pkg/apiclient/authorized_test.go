package apiclient_test

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
)

type fakeAuth struct {
	pair       apiclient.TokenPair
	held       bool
	refreshed  apiclient.TokenPair
	refreshErr error
	refreshes  int
	logouts    int
	onRefresh  func()
}

func (f *fakeAuth) Token() (apiclient.TokenPair, bool) { return f.pair, f.held }

func (f *fakeAuth) Refresh(context.Context) (apiclient.TokenPair, error) {
	f.refreshes++
	if f.onRefresh != nil {
		f.onRefresh()
	}
	if f.refreshErr != nil {
		return apiclient.TokenPair{}, f.refreshErr
	}
	f.pair = f.refreshed
	return f.pair, nil
}

func (f *fakeAuth) Logout() {
	f.logouts++
	f.held = false
	f.pair = apiclient.TokenPair{}
}

// protected accepts only the given access token and counts calls.
func protected(valid string, calls *atomic.Int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+valid {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"ok": "yes"})
	})
}

func TestAuthorized_RefreshAndReplayOnce(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := newClient(t, protected("fresh", &calls))
	auth := &fakeAuth{
		pair:      apiclient.TokenPair{AccessToken: "stale", RefreshToken: "r", TokenType: "bearer"},
		held:      true,
		refreshed: apiclient.TokenPair{AccessToken: "fresh", RefreshToken: "r2", TokenType: "bearer"},
	}
	expired := 0
	a := apiclient.NewAuthorized(c, auth, apiclient.OnSessionExpired(func(error) { expired++ }))

	var out map[string]string
	err := a.Do(context.Background(), apiclient.Request{Path: "/users/me"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "yes", out["ok"])
	assert.Equal(t, 1, auth.refreshes)
	assert.Equal(t, int32(2), calls.Load(), "original plus exactly one replay")
	assert.Equal(t, 0, auth.logouts)
	assert.Equal(t, 0, expired)
}

func TestAuthorized_RefreshFailureTearsDown(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := newClient(t, protected("fresh", &calls))
	auth := &fakeAuth{
		pair:       apiclient.TokenPair{AccessToken: "stale", RefreshToken: "r", TokenType: "bearer"},
		held:       true,
		refreshErr: &apiclient.Error{StatusCode: http.StatusUnauthorized, Detail: "Invalid refresh token"},
	}
	var expiredWith error
	a := apiclient.NewAuthorized(c, auth, apiclient.OnSessionExpired(func(err error) { expiredWith = err }))

	err := a.Do(context.Background(), apiclient.Request{Path: "/users/me"}, nil)
	require.ErrorIs(t, err, apiclient.ErrSessionExpired)
	assert.Equal(t, 1, auth.refreshes)
	assert.Equal(t, 1, auth.logouts)
	assert.Equal(t, int32(1), calls.Load(), "no replay after failed refresh")
	assert.Error(t, expiredWith)
	_, held := auth.Token()
	assert.False(t, held)
}

func TestAuthorized_ReplayRejectedIsNotRetriedAgain(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := newClient(t, protected("never", &calls))
	auth := &fakeAuth{
		pair:      apiclient.TokenPair{AccessToken: "stale", RefreshToken: "r"},
		held:      true,
		refreshed: apiclient.TokenPair{AccessToken: "still-bad", RefreshToken: "r2"},
	}
	a := apiclient.NewAuthorized(c, auth)

	err := a.Do(context.Background(), apiclient.Request{Path: "/users/me"}, nil)
	assert.True(t, apiclient.IsUnauthorized(err))
	assert.Equal(t, 1, auth.refreshes)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAuthorized_NoCredentialsNoRefresh(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := newClient(t, protected("x", &calls))
	auth := &fakeAuth{}
	a := apiclient.NewAuthorized(c, auth)

	err := a.Do(context.Background(), apiclient.Request{Path: "/users/me"}, nil)
	assert.True(t, apiclient.IsUnauthorized(err))
	assert.Equal(t, 0, auth.refreshes)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAuthorized_SupersededRefreshKeepsSession(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := newClient(t, protected("fresh", &calls))
	auth := &fakeAuth{
		pair:       apiclient.TokenPair{AccessToken: "stale", RefreshToken: "r"},
		held:       true,
		refreshErr: errors.Join(errors.New("session changed"), apiclient.ErrSuperseded),
	}
	expired := false
	a := apiclient.NewAuthorized(c, auth, apiclient.OnSessionExpired(func(error) { expired = true }))

	err := a.Do(context.Background(), apiclient.Request{Path: "/users/me"}, nil)
	assert.ErrorIs(t, err, apiclient.ErrSuperseded)
	assert.Equal(t, 0, auth.logouts)
	assert.False(t, expired)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAuthorized_CancelledCallerKeepsSession(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := newClient(t, protected("fresh", &calls))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	auth := &fakeAuth{
		pair:       apiclient.TokenPair{AccessToken: "stale", RefreshToken: "r"},
		held:       true,
		refreshErr: context.Canceled,
		onRefresh:  cancel,
	}
	expired := false
	a := apiclient.NewAuthorized(c, auth, apiclient.OnSessionExpired(func(error) { expired = true }))

	err := a.Do(ctx, apiclient.Request{Path: "/users/me"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, apiclient.ErrSessionExpired)
	assert.Equal(t, 0, auth.logouts)
	assert.False(t, expired)
	_, held := auth.Token()
	assert.True(t, held)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAuthorized_PassesThroughOtherErrors(t *testing.T) {
	t.Parallel()
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Product not found"})
	}))
	auth := &fakeAuth{pair: apiclient.TokenPair{AccessToken: "t"}, held: true}
	a := apiclient.NewAuthorized(c, auth)

	err := a.Do(context.Background(), apiclient.Request{Path: "/products/9"}, nil)
	assert.ErrorIs(t, err, apiclient.ErrNotFound)
	assert.Equal(t, 0, auth.refreshes)
}
