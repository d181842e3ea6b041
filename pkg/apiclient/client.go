package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dmitrymomot/storefront/pkg/logger"
)

const maxErrorBody = 1 << 20

// Request describes a single call relative to the client's base URL.
// At most one of JSON and Form may be set.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	JSON   any
	Form   url.Values

	// Auth, when set, is attached as the Authorization header.
	Auth *TokenPair
}

// Doer is anything that can execute a Request and decode its response.
// Both *Client and *Authorized satisfy it.
type Doer interface {
	Do(ctx context.Context, req Request, out any) error
}

// Client talks to the storefront REST API. Safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	validate  *validator.Validate
	log       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (useful with httptest).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger for request tracing. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for cfg.BaseURL.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		base:      base,
		http:      &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		validate:  newValidator(),
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(logger.Component("apiclient"))
	return c, nil
}

// BaseURL returns the API root every request path is joined to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Validate checks a payload's validate tags before it is sent.
func (c *Client) Validate(v any) error {
	if err := c.validate.Struct(v); err != nil {
		return errors.Join(ErrValidationFailed, err)
	}
	return nil
}

// Do sends req and decodes a 2xx JSON body into out (which may be nil).
// Non-2xx responses come back as *Error.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return err
	}
	requestID := httpReq.Header.Get("X-Request-ID")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.DebugContext(ctx, "request failed",
			logger.Method(req.Method), logger.Path(req.Path), logger.RequestID(requestID), logger.Error(err))
		return errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	c.log.DebugContext(ctx, "request completed",
		logger.Method(req.Method),
		logger.Path(req.Path),
		logger.StatusCode(resp.StatusCode),
		logger.Duration(time.Since(start)),
		logger.RequestID(requestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(body),
			RequestID:  requestID,
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return errors.Join(ErrDecodeResponse, err)
	}
	return nil
}

func (c *Client) build(ctx context.Context, req Request) (*http.Request, error) {
	if req.JSON != nil && req.Form != nil {
		return nil, fmt.Errorf("%w: both JSON and form body set", ErrInvalidRequest)
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	u := c.base.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.JSON != nil:
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, errors.Join(ErrInvalidRequest, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, errors.Join(ErrInvalidRequest, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if req.Auth != nil && req.Auth.Valid() {
		req.Auth.OAuth2().SetAuthHeader(httpReq)
	}
	return httpReq, nil
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
