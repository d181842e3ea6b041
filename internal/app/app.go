// Package app owns the storefront client's long-lived components and their
// lifecycle. Callers build one App at startup and Close it on exit.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrymomot/storefront/pkg/account"
	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/cart"
	"github.com/dmitrymomot/storefront/pkg/catalog"
	"github.com/dmitrymomot/storefront/pkg/kvstore"
	"github.com/dmitrymomot/storefront/pkg/kvstore/bolt"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/redis"
	"github.com/dmitrymomot/storefront/pkg/session"
)

// BoltFile is the database file name inside the data directory.
const BoltFile = "storefront.db"

type App struct {
	Config  Config
	Log     *slog.Logger
	Store   kvstore.Store
	Client  *apiclient.Client
	API     *apiclient.Authorized
	Session *session.Manager
	Cart    *cart.Manager
	Catalog *catalog.Client
	Account *account.Service

	closers []func() error
}

type Option func(*options)

type options struct {
	log       *slog.Logger
	store     kvstore.Store
	http      *http.Client
	onExpired func(error)
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithStore bypasses the configured driver.
func WithStore(s kvstore.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.http = c
	}
}

// WithSessionExpired is called after a failed token refresh ended the session.
func WithSessionExpired(fn func(error)) Option {
	return func(o *options) {
		o.onExpired = fn
	}
}

// New opens the store, restores session and cart state and wires the API
// client. On error everything opened so far is closed again.
func New(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	o := &options{log: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}

	a := &App{Config: cfg, Log: o.log}

	a.Store = o.store
	if a.Store == nil {
		store, closer, err := OpenStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.Store = store
		if closer != nil {
			a.closers = append(a.closers, closer)
		}
	}

	clientOpts := []apiclient.Option{
		apiclient.WithLogger(o.log),
		apiclient.WithUserAgent(cfg.API.UserAgent),
	}
	if o.http != nil {
		clientOpts = append(clientOpts, apiclient.WithHTTPClient(o.http))
	}
	client, err := apiclient.New(cfg.API, clientOpts...)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}
	a.Client = client

	a.Session = session.New(ctx, client, a.Store, session.WithLogger(o.log))
	a.Cart = cart.New(ctx, a.Store, cart.WithLogger(o.log))

	authOpts := []apiclient.AuthorizedOption{apiclient.WithAuthorizedLogger(o.log)}
	if o.onExpired != nil {
		authOpts = append(authOpts, apiclient.OnSessionExpired(o.onExpired))
	}
	a.API = apiclient.NewAuthorized(client, a.Session, authOpts...)
	a.Catalog = catalog.New(a.API, cfg.Catalog, catalog.WithLogger(o.log))
	a.Account = account.New(a.API)

	a.closers = append(a.closers, func() error {
		a.Session.Close()
		a.Cart.Close()
		return nil
	})
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Healthcheck pings the store when its driver supports it. Local drivers
// always report healthy.
func (a *App) Healthcheck(ctx context.Context) error {
	p, ok := a.Store.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// OpenStore builds the durable store selected by cfg.Store.Driver.
// The returned closer may be nil.
func OpenStore(ctx context.Context, cfg Config) (kvstore.Store, func() error, error) {
	switch cfg.Store.Driver {
	case kvstore.DriverMemory:
		return kvstore.NewMemoryStore(), nil, nil

	case kvstore.DriverFile:
		s, err := kvstore.NewFileStore(cfg.Store.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil

	case kvstore.DriverBolt, "":
		if err := os.MkdirAll(cfg.Store.DataDir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		s, err := bolt.Open(filepath.Join(cfg.Store.DataDir, BoltFile))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case kvstore.DriverRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		s := redis.NewStore(client, cfg.Redis.KeyPrefix)
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", kvstore.ErrUnknownDriver, cfg.Store.Driver)
}
