package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/broadcast"
	"github.com/dmitrymomot/storefront/pkg/kvstore"
	"github.com/dmitrymomot/storefront/pkg/logger"
)

// API is the subset of the backend the manager talks to.
// *apiclient.Client satisfies it.
type API interface {
	Login(ctx context.Context, creds apiclient.Credentials) (apiclient.TokenPair, error)
	Register(ctx context.Context, data apiclient.RegisterData) (apiclient.User, error)
	Me(ctx context.Context, pair apiclient.TokenPair) (apiclient.User, error)
	Refresh(ctx context.Context, refreshToken string) (apiclient.TokenPair, error)
}

type ticket uint64

// effect describes what a completion changed. Only completions that touch the
// session itself advance the commit watermark; recording an error does not.
type effect int

const (
	effectNone    effect = iota // Error field only
	effectSession               // identity or authenticated flag
	effectTokens                // token pair, and with it the session
)

// Manager is the session state container. Safe for concurrent use.
type Manager struct {
	api   API
	store kvstore.Store
	log   *slog.Logger

	mu        sync.RWMutex
	state     State
	inflight  int
	issued    uint64
	committed uint64

	refreshGroup singleflight.Group
	events       *broadcast.Broadcaster[Event]
	eventBuffer  int
}

var _ apiclient.Authenticator = (*Manager)(nil)

// New creates a manager and restores a previously persisted token pair.
// A restored pair counts as authenticated until CheckAuthStatus says
// otherwise. An unreadable entry is treated as absent and removed.
func New(ctx context.Context, api API, store kvstore.Store, opts ...Option) *Manager {
	m := &Manager{
		api:         api,
		store:       store,
		log:         logger.Discard(),
		eventBuffer: 16,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("session"))
	m.events = broadcast.New[Event](m.eventBuffer)
	m.restore(ctx)
	return m
}

func (m *Manager) restore(ctx context.Context) {
	var pair apiclient.TokenPair
	err := kvstore.GetJSON(ctx, m.store, KeyTokens, &pair)
	switch {
	case err == nil && pair.Valid():
		m.state.Tokens = &pair
		m.state.IsAuthenticated = true
		m.log.DebugContext(ctx, "restored token pair")
	case errors.Is(err, kvstore.ErrNotFound):
	default:
		m.log.WarnContext(ctx, "discarding unreadable token entry", logger.Key(KeyTokens), logger.Error(err))
		m.deleteTokens(ctx)
	}
}

// State returns a snapshot of the current session.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot()
}

// Token returns the held token pair.
func (m *Manager) Token() (apiclient.TokenPair, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state.Tokens == nil {
		return apiclient.TokenPair{}, false
	}
	return *m.state.Tokens, true
}

// Subscribe streams events until ctx is done or the manager is closed.
func (m *Manager) Subscribe(ctx context.Context) *broadcast.Subscription[Event] {
	return m.events.Subscribe(ctx)
}

// Close ends all subscriptions. In-flight operations still complete.
func (m *Manager) Close() {
	m.events.Close()
}

// Login exchanges credentials for a token pair, resolves the identity with
// it and commits both. On failure the previous session is left as it was and
// Error holds the backend's message.
func (m *Manager) Login(ctx context.Context, creds apiclient.Credentials) (apiclient.User, error) {
	return m.login(ctx, m.begin(OpLogin), creds)
}

func (m *Manager) login(ctx context.Context, t ticket, creds apiclient.Credentials) (apiclient.User, error) {
	pair, err := m.api.Login(ctx, creds)
	if err != nil {
		return apiclient.User{}, m.reject(ctx, OpLogin, t, apiclient.Message(err, msgLoginFailed), err)
	}
	user, err := m.api.Me(ctx, pair)
	if err != nil {
		return apiclient.User{}, m.reject(ctx, OpLogin, t, apiclient.Message(err, msgLoginFailed), err)
	}
	if err := m.authenticate(ctx, OpLogin, t, user, pair); err != nil {
		return apiclient.User{}, err
	}
	m.log.InfoContext(ctx, "logged in", logger.UserID(user.ID))
	return user, nil
}

// Register creates the account and logs straight into it with the same
// credentials. Nothing is committed unless both steps succeed.
func (m *Manager) Register(ctx context.Context, data apiclient.RegisterData) (apiclient.User, error) {
	return m.register(ctx, m.begin(OpRegister), data)
}

func (m *Manager) register(ctx context.Context, t ticket, data apiclient.RegisterData) (apiclient.User, error) {
	user, err := m.api.Register(ctx, data)
	if err != nil {
		return apiclient.User{}, m.reject(ctx, OpRegister, t, apiclient.Message(err, msgRegistrationFailed), err)
	}
	pair, err := m.api.Login(ctx, data.Credentials())
	if err != nil {
		return apiclient.User{}, m.reject(ctx, OpRegister, t, apiclient.Message(err, msgRegistrationFailed), err)
	}
	if err := m.authenticate(ctx, OpRegister, t, user, pair); err != nil {
		return apiclient.User{}, err
	}
	m.log.InfoContext(ctx, "registered", logger.UserID(user.ID))
	return user, nil
}

// ResolveIdentity re-fetches the identity for the held access token.
// Any failure tears the whole session down, storage included.
func (m *Manager) ResolveIdentity(ctx context.Context) (apiclient.User, error) {
	return m.resolveIdentity(ctx, m.begin(OpResolveIdentity))
}

func (m *Manager) resolveIdentity(ctx context.Context, t ticket) (apiclient.User, error) {
	pair, ok := m.Token()
	if !ok {
		return apiclient.User{}, m.terminate(ctx, OpResolveIdentity, t, msgNotAuthenticated, ErrUnauthenticated)
	}
	user, err := m.api.Me(ctx, pair)
	if err != nil {
		return apiclient.User{}, m.terminate(ctx, OpResolveIdentity, t, apiclient.Message(err, msgResolveFailed), err)
	}
	err = m.complete(ctx, OpResolveIdentity, t, PhaseFulfilled, func(s *State) effect {
		s.User = &user
		return effectSession
	})
	return user, err
}

// CheckAuthStatus validates a held token pair at startup. It returns a nil
// user when there is no session or the held pair was rejected; the latter
// clears the session without setting Error.
func (m *Manager) CheckAuthStatus(ctx context.Context) (*apiclient.User, error) {
	return m.checkAuthStatus(ctx, m.begin(OpCheckAuthStatus))
}

func (m *Manager) checkAuthStatus(ctx context.Context, t ticket) (*apiclient.User, error) {
	pair, ok := m.Token()
	if !ok {
		return nil, m.complete(ctx, OpCheckAuthStatus, t, PhaseFulfilled, func(s *State) effect {
			s.teardown()
			return effectTokens
		})
	}

	user, err := m.api.Me(ctx, pair)
	if err != nil {
		m.log.InfoContext(ctx, "held token rejected, clearing session", logger.Error(err))
		return nil, m.complete(ctx, OpCheckAuthStatus, t, PhaseRejected, func(s *State) effect {
			s.teardown()
			s.Error = ""
			return effectTokens
		})
	}

	if err := m.complete(ctx, OpCheckAuthStatus, t, PhaseFulfilled, func(s *State) effect {
		s.User = &user
		s.IsAuthenticated = true
		return effectSession
	}); err != nil {
		return nil, err
	}
	return &user, nil
}

// Refresh exchanges the held refresh token for a new pair and commits it in
// place; the identity is untouched. Concurrent calls share one exchange.
// The exchange is detached from the cancellation of whichever caller started
// it; a caller whose ctx ends stops waiting and gets ctx.Err() while the
// others still receive the result.
// On failure the session is left for the caller to tear down.
func (m *Manager) Refresh(ctx context.Context) (apiclient.TokenPair, error) {
	ch := m.refreshGroup.DoChan("refresh", func() (any, error) {
		return m.refresh(context.WithoutCancel(ctx), m.begin(OpRefresh))
	})
	select {
	case <-ctx.Done():
		return apiclient.TokenPair{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return apiclient.TokenPair{}, res.Err
		}
		return res.Val.(apiclient.TokenPair), nil
	}
}

func (m *Manager) refresh(ctx context.Context, t ticket) (apiclient.TokenPair, error) {
	held, ok := m.Token()
	if !ok || held.RefreshToken == "" {
		return apiclient.TokenPair{}, m.complete(ctx, OpRefresh, t, PhaseRejected, noChange, ErrUnauthenticated)
	}
	pair, err := m.api.Refresh(ctx, held.RefreshToken)
	if err != nil {
		return apiclient.TokenPair{}, m.complete(ctx, OpRefresh, t, PhaseRejected, noChange, err)
	}
	if err := m.complete(ctx, OpRefresh, t, PhaseFulfilled, func(s *State) effect {
		s.Tokens = &pair
		return effectTokens
	}); err != nil {
		return apiclient.TokenPair{}, err
	}
	m.log.DebugContext(ctx, "token pair refreshed")
	return pair, nil
}

// Logout clears the session and its storage entry. It never fails and
// supersedes every operation still in flight.
func (m *Manager) Logout() {
	m.commitNow(context.Background(), OpLogout, func(s *State) {
		s.teardown()
		s.Error = ""
	})
	m.log.Info("logged out")
}

// SetTokens commits an externally obtained pair and marks the session
// authenticated. The identity is left as is.
func (m *Manager) SetTokens(ctx context.Context, pair apiclient.TokenPair) {
	m.commitNow(ctx, OpSetTokens, func(s *State) {
		s.Tokens = &pair
		s.IsAuthenticated = true
	})
}

// ClearError resets the error field.
func (m *Manager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Error = ""
	m.publish(OpClearError, PhaseFulfilled)
}

// begin issues a ticket and publishes the pending phase.
func (m *Manager) begin(op Op) ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued++
	m.inflight++
	if op == OpLogin || op == OpRegister {
		m.state.Error = ""
	}
	m.publish(op, PhasePending)
	return ticket(m.issued)
}

// complete applies a completion unless a newer ticket already committed.
// apply reports what it changed: a session change moves the watermark and a
// token change is also synced to storage. An error-only completion leaves the
// watermark alone so it cannot discard an older operation still in flight.
// When cause is non-nil it is returned after a successful commit.
func (m *Manager) complete(ctx context.Context, op Op, t ticket, phase Phase, apply func(*State) effect, cause ...error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inflight--
	if uint64(t) < m.committed {
		m.log.DebugContext(ctx, "discarding superseded completion", logger.Operation(string(op)))
		m.publish(op, PhaseRejected)
		return ErrSuperseded
	}
	switch apply(&m.state) {
	case effectTokens:
		m.committed = uint64(t)
		m.syncTokens(ctx)
	case effectSession:
		m.committed = uint64(t)
	}
	m.publish(op, phase)
	return errors.Join(cause...)
}

// commitNow is complete for synchronous operations: issue and commit at once.
func (m *Manager) commitNow(ctx context.Context, op Op, apply func(*State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued++
	m.committed = m.issued
	apply(&m.state)
	m.syncTokens(ctx)
	m.publish(op, PhaseFulfilled)
}

func (m *Manager) authenticate(ctx context.Context, op Op, t ticket, user apiclient.User, pair apiclient.TokenPair) error {
	return m.complete(ctx, op, t, PhaseFulfilled, func(s *State) effect {
		s.User = &user
		s.Tokens = &pair
		s.IsAuthenticated = true
		s.Error = ""
		return effectTokens
	})
}

// reject records a failure message without touching the session.
func (m *Manager) reject(ctx context.Context, op Op, t ticket, msg string, cause error) error {
	return m.complete(ctx, op, t, PhaseRejected, func(s *State) effect {
		s.Error = msg
		return effectNone
	}, cause)
}

// terminate records a failure message and tears the session down.
func (m *Manager) terminate(ctx context.Context, op Op, t ticket, msg string, cause error) error {
	return m.complete(ctx, op, t, PhaseRejected, func(s *State) effect {
		s.teardown()
		s.Error = msg
		return effectTokens
	}, cause)
}

func noChange(*State) effect { return effectNone }

// must be called with m.mu held
func (m *Manager) syncTokens(ctx context.Context) {
	if m.state.Tokens == nil {
		m.deleteTokens(ctx)
		return
	}
	if err := kvstore.SetJSON(ctx, m.store, KeyTokens, m.state.Tokens); err != nil {
		m.log.WarnContext(ctx, "failed to persist token pair", logger.Key(KeyTokens), logger.Error(err))
	}
}

func (m *Manager) deleteTokens(ctx context.Context) {
	if err := m.store.Delete(ctx, KeyTokens); err != nil {
		m.log.WarnContext(ctx, "failed to remove token pair", logger.Key(KeyTokens), logger.Error(err))
	}
}

// must be called with m.mu held
func (m *Manager) snapshot() State {
	s := m.state.clone()
	s.IsLoading = m.inflight > 0
	return s
}

// must be called with m.mu held
func (m *Manager) publish(op Op, phase Phase) {
	m.events.Publish(Event{Op: op, Phase: phase, State: m.snapshot()})
}
