package fakeapi

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
)

type profileRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Bio      *string `json:"bio"`
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=100"`
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	acc := r.Context().Value(ctxKey{}).(*account)

	var req profileRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidation(w, "body", err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeValidation(w, "body", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Email != nil && !strings.EqualFold(*req.Email, acc.user.Email) {
		if s.findLocked(func(u apiclient.User) bool { return strings.EqualFold(u.Email, *req.Email) }) != nil {
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
	}
	if req.Username != nil && *req.Username != acc.user.Username {
		if s.findLocked(func(u apiclient.User) bool { return u.Username == *req.Username }) != nil {
			writeDetail(w, http.StatusBadRequest, "Username already taken")
			return
		}
	}

	u := &acc.user
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Username != nil {
		u.Username = *req.Username
	}
	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	updated := apiclient.Timestamp{Time: s.now().UTC()}
	u.UpdatedAt = &updated
	writeJSON(w, http.StatusOK, *u)
}

func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) {
	acc := r.Context().Value(ctxKey{}).(*account)

	var req passwordRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidation(w, "body", err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeValidation(w, "body", err)
		return
	}

	s.mu.RLock()
	current := acc.hash
	s.mu.RUnlock()
	if bcrypt.CompareHashAndPassword(current, []byte(req.CurrentPassword)) != nil {
		writeDetail(w, http.StatusBadRequest, "Incorrect current password")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Could not update password")
		return
	}

	s.mu.Lock()
	acc.hash = hash
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}
