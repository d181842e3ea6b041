// Package account reads and updates the logged-in user's profile.
package account

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
)

// API is an authorized transport that can also validate payloads.
// *apiclient.Authorized satisfies it.
type API interface {
	apiclient.Doer
	Validate(v any) error
}

type Service struct {
	api API
}

func New(api API) *Service {
	return &Service{api: api}
}

// Me fetches the profile from /users/me.
func (s *Service) Me(ctx context.Context) (apiclient.User, error) {
	var user apiclient.User
	err := s.api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: "/users/me"}, &user)
	return user, err
}

// UpdateProfile changes the non-nil fields of upd and returns the stored profile.
func (s *Service) UpdateProfile(ctx context.Context, upd apiclient.ProfileUpdate) (apiclient.User, error) {
	var user apiclient.User
	if err := s.api.Validate(upd); err != nil {
		return user, err
	}
	err := s.api.Do(ctx, apiclient.Request{Method: http.MethodPut, Path: "/users/me", JSON: upd}, &user)
	return user, err
}

// UpdatePassword changes the password. The backend answers 400 when the
// current password does not match.
func (s *Service) UpdatePassword(ctx context.Context, change apiclient.PasswordChange) error {
	if err := s.api.Validate(change); err != nil {
		return err
	}
	return s.api.Do(ctx, apiclient.Request{Method: http.MethodPut, Path: "/users/me/password", JSON: change}, nil)
}
