// Package async runs blocking operations in the background and hands back a
// Future for the result.
//
// The session manager's blocking methods (Login, Register, CheckAuthStatus)
// are the primitive; their *Async twins wrap them with Go so an event loop
// can dispatch the call and keep rendering while the request is in flight.
//
//	fut := async.Go(ctx, func(ctx context.Context) (*User, error) {
//	    return mgr.Login(ctx, creds)
//	})
//	...
//	user, err := fut.Await(ctx)
//
// A Future completes exactly once. Await with a cancelled context returns the
// context error but does not stop the underlying operation.
package async
