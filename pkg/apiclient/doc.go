// Package apiclient is the REST transport for the storefront backend.
//
// It builds JSON and form requests against a base URL, decodes the backend's
// {"detail": ...} error payloads into *Error values and exposes the
// authentication endpoints (login, register, me, refresh) as typed calls.
//
// Authenticated traffic goes through Authorized, an explicit policy wrapper
// around Client:
//
//	authed := apiclient.NewAuthorized(client, sessionManager,
//	    apiclient.OnSessionExpired(func(err error) { promptLogin() }),
//	)
//	var products []catalog.Product
//	err := authed.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: "/products"}, &products)
//
// Every request carries the current access token. When the backend answers
// 401 the wrapper asks the Authenticator for exactly one refresh and replays
// the original request exactly once with the new token. If the refresh fails
// the session is torn down, the expiry hook runs and no replay happens.
//
// The auth endpoints themselves never go through the policy; a 401 from
// /auth/login is a bad password, not an expired token.
package apiclient
