package session_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/kvstore"
	"github.com/dmitrymomot/storefront/pkg/session"
)

var (
	alice = apiclient.User{ID: 1, Email: "alice@example.com", Username: "alice", IsActive: true}
	pair1 = apiclient.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1", TokenType: "bearer"}
	pair2 = apiclient.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2", TokenType: "bearer"}
)

func unauthorized(detail string) error {
	return &apiclient.Error{StatusCode: http.StatusUnauthorized, Detail: detail}
}

// stubAPI knows one account (alice / secret1) and accepts access-1 and
// access-2. Login can be gated to hold it in flight.
type stubAPI struct {
	mu        sync.Mutex
	valid     map[string]bool
	gate      chan struct{}
	entered   chan struct{}
	refreshFn func(context.Context, string) (apiclient.TokenPair, error)
	user      *apiclient.User

	logins    atomic.Int32
	refreshes atomic.Int32
}

func newStub() *stubAPI {
	return &stubAPI{valid: map[string]bool{"access-1": true, "access-2": true}}
}

func (s *stubAPI) revoke(access string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.valid[access] = false
}

func (s *stubAPI) Login(ctx context.Context, creds apiclient.Credentials) (apiclient.TokenPair, error) {
	s.logins.Add(1)
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	if creds.Username != "alice" || creds.Password != "secret1" {
		return apiclient.TokenPair{}, unauthorized("Incorrect email or password")
	}
	return pair1, nil
}

func (s *stubAPI) Register(_ context.Context, data apiclient.RegisterData) (apiclient.User, error) {
	if data.Username == "taken" {
		return apiclient.User{}, &apiclient.Error{StatusCode: http.StatusBadRequest, Detail: "Username already taken"}
	}
	return apiclient.User{ID: 2, Email: data.Email, Username: data.Username}, nil
}

func (s *stubAPI) Me(_ context.Context, pair apiclient.TokenPair) (apiclient.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.valid[pair.AccessToken] {
		return apiclient.User{}, unauthorized("Could not validate credentials")
	}
	if s.user != nil {
		return *s.user, nil
	}
	return alice, nil
}

func (s *stubAPI) Refresh(ctx context.Context, rt string) (apiclient.TokenPair, error) {
	s.refreshes.Add(1)
	if s.refreshFn != nil {
		return s.refreshFn(ctx, rt)
	}
	if rt != pair1.RefreshToken {
		return apiclient.TokenPair{}, unauthorized("Invalid refresh token")
	}
	return pair2, nil
}

func newManager(t *testing.T, api session.API, store kvstore.Store) *session.Manager {
	t.Helper()
	m := session.New(context.Background(), api, store)
	t.Cleanup(m.Close)
	return m
}

func storedTokens(t *testing.T, store kvstore.Store) (apiclient.TokenPair, bool) {
	t.Helper()
	var p apiclient.TokenPair
	err := kvstore.GetJSON(context.Background(), store, session.KeyTokens, &p)
	if errors.Is(err, kvstore.ErrNotFound) {
		return p, false
	}
	require.NoError(t, err)
	return p, true
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }
func (brokenStore) Set(context.Context, string, []byte) error   { return errors.New("disk gone") }
func (brokenStore) Delete(context.Context, string) error        { return errors.New("disk gone") }
