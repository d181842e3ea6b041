package session

import "github.com/dmitrymomot/storefront/pkg/apiclient"

// KeyTokens is the storage key holding the JSON-encoded token pair.
const KeyTokens = "tokens"

// State is a snapshot of the session.
type State struct {
	User            *apiclient.User
	Tokens          *apiclient.TokenPair
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

func (s State) clone() State {
	if s.User != nil {
		u := s.User.Clone()
		s.User = &u
	}
	if s.Tokens != nil {
		t := *s.Tokens
		s.Tokens = &t
	}
	return s
}

// teardown clears identity, tokens and the authenticated flag together.
func (s *State) teardown() {
	s.User = nil
	s.Tokens = nil
	s.IsAuthenticated = false
}

// Op names the operation that produced an Event.
type Op string

const (
	OpLogin           Op = "login"
	OpRegister        Op = "register"
	OpResolveIdentity Op = "resolve_identity"
	OpCheckAuthStatus Op = "check_auth_status"
	OpRefresh         Op = "refresh"
	OpLogout          Op = "logout"
	OpSetTokens       Op = "set_tokens"
	OpClearError      Op = "clear_error"
)

// Phase is the lifecycle stage of an operation: pending when issued,
// then fulfilled or rejected when it completes.
type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseFulfilled Phase = "fulfilled"
	PhaseRejected  Phase = "rejected"
)

// Event is published after every observable change.
type Event struct {
	Op    Op
	Phase Phase
	State State
}
