// Package fakeapi is an in-process storefront backend.
//
// It implements the REST surface the client consumes (auth, products,
// users) with bcrypt password hashes and HS256 JWTs, keeps everything in
// memory, and exposes a few knobs tests use to provoke the refresh path:
// ExpireAccessTokens, RevokeRefreshTokens and per-route call counts.
//
//	srv := httptest.NewServer(fakeapi.New(fakeapi.WithSampleData()).Handler())
//	client, _ := apiclient.New(apiclient.Config{BaseURL: srv.URL + fakeapi.BasePath})
//
// The storefront CLI serves it with the mock-server command.
package fakeapi
