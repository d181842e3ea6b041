package fakeapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/logger"
)

type ctxKey struct{}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Bio      string `json:"bio"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AddUser creates an account directly, bypassing the HTTP layer.
func (s *Server) AddUser(email, username, password string) (apiclient.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return apiclient.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(registerRequest{Email: email, Username: username}, hash).user, nil
}

// must be called with s.mu held
func (s *Server) createLocked(req registerRequest, hash []byte) *account {
	s.nextUserID++
	acc := &account{
		user: apiclient.User{
			ID:        s.nextUserID,
			Email:     req.Email,
			Username:  req.Username,
			FullName:  req.FullName,
			Phone:     req.Phone,
			Bio:       req.Bio,
			IsActive:  true,
			CreatedAt: apiclient.Timestamp{Time: s.now().UTC()},
		},
		hash: hash,
	}
	s.accounts[acc.user.ID] = acc
	return acc
}

// must be called with s.mu held
func (s *Server) findLocked(match func(apiclient.User) bool) *account {
	for _, acc := range s.accounts {
		if match(acc.user) {
			return acc
		}
	}
	return nil
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidation(w, "body", err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeValidation(w, "body", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Could not create user")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(func(u apiclient.User) bool { return strings.EqualFold(u.Email, req.Email) }) != nil {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	if s.findLocked(func(u apiclient.User) bool { return u.Username == req.Username }) != nil {
		writeDetail(w, http.StatusBadRequest, "Username already taken")
		return
	}
	acc := s.createLocked(req, hash)
	s.log.InfoContext(r.Context(), "user registered", logger.UserID(acc.user.ID))
	writeJSON(w, http.StatusOK, acc.user)
}

// login accepts the username or the email in the "username" form field.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeValidation(w, "body", err)
		return
	}
	name := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if name == "" || password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	s.mu.RLock()
	acc := s.findLocked(func(u apiclient.User) bool {
		return u.Username == name || strings.EqualFold(u.Email, name)
	})
	s.mu.RUnlock()

	if acc == nil || bcrypt.CompareHashAndPassword(acc.hash, []byte(password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	s.mu.Lock()
	pair, err := s.issuePair(acc.user.ID)
	if err == nil {
		last := apiclient.Timestamp{Time: s.now().UTC()}
		acc.user.LastLogin = &last
	}
	s.mu.Unlock()
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidation(w, "body", err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeValidation(w, "body", err)
		return
	}

	userID, err := s.verify(req.RefreshToken, kindRefresh)
	switch {
	case errors.Is(err, errWrongTokenType):
		writeDetail(w, http.StatusUnauthorized, "Invalid token type")
		return
	case err != nil:
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[userID]; !ok {
		writeDetail(w, http.StatusUnauthorized, "User not found")
		return
	}
	pair, err := s.issuePair(userID)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	acc := r.Context().Value(ctxKey{}).(*account)
	s.mu.RLock()
	user := acc.user
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, user)
}

// requireUser resolves the bearer access token to an active account.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, raw, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		userID, err := s.verify(raw, kindAccess)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		s.mu.RLock()
		acc, found := s.accounts[userID]
		active := found && acc.user.IsActive
		s.mu.RUnlock()
		if !found {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}
		if !active {
			writeDetail(w, http.StatusBadRequest, "Inactive user")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, acc)))
	})
}
