package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
)

func newClient(t *testing.T, h http.Handler) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api/v1", UserAgent: "test-agent"},
		apiclient.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_InvalidURL(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "ftp://example.com", "http://", "://bad"} {
		_, err := apiclient.New(apiclient.Config{BaseURL: raw})
		assert.ErrorIs(t, err, apiclient.ErrInvalidURL, raw)
	}
}

func TestClient_DoDecodesJSON(t *testing.T) {
	t.Parallel()
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/products", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 1}, {"id": 2}})
	}))

	var out []struct {
		ID int `json:"id"`
	}
	err := c.Do(context.Background(), apiclient.Request{
		Method: http.MethodGet,
		Path:   "/products",
		Query:  map[string][]string{"limit": {"5"}},
	}, &out)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestClient_ErrorDetail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		status int
		body   any
		detail string
		is     error
	}{
		{"string detail", http.StatusUnauthorized, map[string]any{"detail": "Incorrect email or password"}, "Incorrect email or password", apiclient.ErrUnauthorized},
		{"list detail", http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]any{
			{"loc": []string{"body", "email"}, "msg": "value is not a valid email address"},
			{"loc": []string{"body", "password"}, "msg": "too short"},
		}}, "value is not a valid email address; too short", nil},
		{"no detail", http.StatusNotFound, map[string]any{"error": "x"}, "", apiclient.ErrNotFound},
		{"server error", http.StatusBadGateway, "oops", "", apiclient.ErrServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}))
			err := c.Do(context.Background(), apiclient.Request{Path: "/x"}, nil)
			var apiErr *apiclient.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.detail, apiErr.Detail)
			assert.NotEmpty(t, apiErr.RequestID)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "bad", apiclient.Message(&apiclient.Error{StatusCode: 400, Detail: "bad"}, "fallback"))
	assert.Equal(t, "fallback", apiclient.Message(&apiclient.Error{StatusCode: 500}, "fallback"))
	assert.Equal(t, "fallback", apiclient.Message(errors.New("dial tcp: refused"), "fallback"))
	assert.Equal(t, "fallback", apiclient.Message(nil, "fallback"))
}

func TestClient_Login(t *testing.T) {
	t.Parallel()
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("username") != "alice" || r.PostForm.Get("password") != "secret1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
			return
		}
		writeJSON(w, http.StatusOK, apiclient.TokenPair{AccessToken: "a", RefreshToken: "r", TokenType: "bearer"})
	}))

	pair, err := c.Login(context.Background(), apiclient.Credentials{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "a", pair.AccessToken)
	assert.Equal(t, "r", pair.RefreshToken)

	_, err = c.Login(context.Background(), apiclient.Credentials{Username: "alice", Password: "nope"})
	assert.True(t, apiclient.IsUnauthorized(err))
	assert.Equal(t, "Incorrect email or password", apiclient.Message(err, "Login failed"))
}

func TestClient_MeAttachesBearer(t *testing.T) {
	t.Parallel()
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7,"email":"a@example.com","username":"alice","is_active":true,
			"is_superuser":false,"is_verified":false,"created_at":"2024-03-01T10:20:30.123456","last_login":null}`))
	}))

	user, err := c.Me(context.Background(), apiclient.TokenPair{AccessToken: "tok", TokenType: "bearer"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "alice", user.DisplayName())
	assert.Equal(t, time.Date(2024, 3, 1, 10, 20, 30, 123456000, time.UTC), user.CreatedAt.Time)
	assert.Nil(t, user.LastLogin)

	_, err = c.Me(context.Background(), apiclient.TokenPair{})
	assert.ErrorIs(t, err, apiclient.ErrNoCredentials)
}

func TestClient_RegisterValidates(t *testing.T) {
	t.Parallel()
	calls := 0
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "email": "a@example.com", "username": "alice"})
	}))

	_, err := c.Register(context.Background(), apiclient.RegisterData{Email: "not-an-email", Username: "al", Password: "123"})
	require.ErrorIs(t, err, apiclient.ErrValidationFailed)
	assert.Equal(t, 0, calls)
	msg := apiclient.Message(err, "Registration failed")
	assert.Contains(t, msg, "email must be a valid email address")
	assert.Contains(t, msg, "username must be at least 3 characters")
	assert.Contains(t, msg, "password must be at least 6 characters")

	user, err := c.Register(context.Background(), apiclient.RegisterData{Email: "a@example.com", Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, 1, calls)
}

func TestClient_Refresh(t *testing.T) {
	t.Parallel()
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "r1", body["refresh_token"])
		writeJSON(w, http.StatusOK, apiclient.TokenPair{AccessToken: "a2", RefreshToken: "r2", TokenType: "bearer"})
	}))

	pair, err := c.Refresh(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "a2", pair.AccessToken)

	_, err = c.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, apiclient.ErrNoCredentials)
}

func TestTokenPair_ExpiresAt(t *testing.T) {
	t.Parallel()
	// header {"alg":"HS256","typ":"JWT"}, payload {"sub":"1","exp":1700000000}
	tok := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiIxIiwiZXhwIjoxNzAwMDAwMDAwfQ.c2ln"
	exp, ok := apiclient.TokenPair{AccessToken: tok}.ExpiresAt()
	require.True(t, ok)
	assert.Equal(t, int64(1700000000), exp.Unix())

	_, ok = apiclient.TokenPair{AccessToken: "opaque"}.ExpiresAt()
	assert.False(t, ok)
}
