// Package session owns the client-side authentication state: who is logged
// in and the access/refresh token pair that proves it.
//
// A Manager is the single source of truth. It is constructed once per
// process with an API (usually *apiclient.Client) and a kvstore.Store; the
// token pair is mirrored under the "tokens" key on every change and removed
// on every teardown, so a restarted process picks the session back up.
//
//	mgr := session.New(ctx, client, store, session.WithLogger(log))
//	defer mgr.Close()
//
//	if _, err := mgr.Login(ctx, apiclient.Credentials{Username: u, Password: p}); err != nil {
//	    fmt.Println(mgr.State().Error)
//	}
//
// Network-bound operations (Login, Register, ResolveIdentity,
// CheckAuthStatus, Refresh) go through three observable phases, published to
// subscribers as Events: pending when issued, then fulfilled or rejected when
// they complete. Session fields change only in the completion step. Logout,
// SetTokens and ClearError are synchronous.
//
// # Ordering
//
// Every session-shaping operation draws a ticket when it is issued. A
// completion whose ticket is older than the most recently committed one is
// discarded and returns ErrSuperseded, so a login that was already in flight
// when Logout ran cannot bring the session back.
//
// Manager implements apiclient.Authenticator, which lets apiclient.Authorized
// refresh expired tokens through it.
package session
