package fakeapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
)

type tokenKind string

const (
	kindAccess  tokenKind = "access"
	kindRefresh tokenKind = "refresh"
)

var (
	errInvalidToken   = errors.New("fakeapi.invalid_token")
	errWrongTokenType = errors.New("fakeapi.wrong_token_type")
	errRevokedToken   = errors.New("fakeapi.revoked_token")
)

type claims struct {
	jwt.RegisteredClaims
	Type tokenKind `json:"type"`
}

// issuePair signs a fresh access/refresh pair for userID.
// must be called with s.mu held
func (s *Server) issuePair(userID int64) (apiclient.TokenPair, error) {
	access, err := s.sign(userID, kindAccess, s.accessTTL)
	if err != nil {
		return apiclient.TokenPair{}, err
	}
	refresh, err := s.sign(userID, kindRefresh, s.refreshTTL)
	if err != nil {
		return apiclient.TokenPair{}, err
	}
	return apiclient.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// must be called with s.mu held
func (s *Server) sign(userID int64, kind tokenKind, ttl time.Duration) (string, error) {
	now := s.now()
	id := uuid.NewString()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Type: kind,
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	s.issued[id] = kind
	return signed, nil
}

// verify checks signature, expiry, type and revocation, returning the user id.
func (s *Server) verify(raw string, want tokenKind) (int64, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, errors.Join(errInvalidToken, err)
	}
	if c.Type != want {
		return 0, errWrongTokenType
	}

	s.mu.RLock()
	revoked := s.revoked[c.ID]
	s.mu.RUnlock()
	if revoked {
		return 0, errRevokedToken
	}

	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, errors.Join(errInvalidToken, err)
	}
	return id, nil
}

// ExpireAccessTokens invalidates every access token issued so far, as if
// they had all run out. Refresh tokens keep working.
func (s *Server) ExpireAccessTokens() {
	s.revokeKind(kindAccess)
}

// RevokeRefreshTokens invalidates every refresh token issued so far.
func (s *Server) RevokeRefreshTokens() {
	s.revokeKind(kindRefresh)
}

func (s *Server) revokeKind(kind tokenKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, k := range s.issued {
		if k == kind {
			s.revoked[id] = true
		}
	}
}
