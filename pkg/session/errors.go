package session

import (
	"errors"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
)

var (
	// ErrUnauthenticated is returned when an operation needs a token pair and
	// none is held.
	ErrUnauthenticated = errors.New("session.unauthenticated")

	// ErrSuperseded is returned when a newer operation committed first.
	// It is apiclient.ErrSuperseded so the refresh policy recognizes it.
	ErrSuperseded = apiclient.ErrSuperseded
)

// Fallback messages used when the backend gives no detail.
const (
	msgLoginFailed        = "Login failed"
	msgRegistrationFailed = "Registration failed"
	msgResolveFailed      = "Failed to get user"
	msgNotAuthenticated   = "Not authenticated"
)
