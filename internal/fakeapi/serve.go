package fakeapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrymomot/storefront/pkg/logger"
)

// ServeConfig holds listener settings for running the fake backend as a
// standalone process.
type ServeConfig struct {
	Addr            string        `env:"FAKEAPI_ADDR" envDefault:"127.0.0.1:8000"`
	ReadTimeout     time.Duration `env:"FAKEAPI_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"FAKEAPI_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"FAKEAPI_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

var (
	ErrStart    = errors.New("fakeapi.start_failed")
	ErrShutdown = errors.New("fakeapi.shutdown_failed")
)

// ListenAndServe binds cfg.Addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, cfg ServeConfig) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return errors.Join(ErrStart, err)
	}
	return s.Serve(ctx, ln, cfg)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout. The listener is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener, cfg ServeConfig) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
	})
	mux.Handle("/", s.Handler())

	srv := &http.Server{
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.InfoContext(ctx, "fake API listening", "addr", ln.Addr().String(), "base_path", BasePath)

	var runErr error
	select {
	case <-ctx.Done():
		timeout := cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			s.log.ErrorContext(ctx, "fake API shutdown failed", logger.Error(err))
			return errors.Join(ErrShutdown, err)
		}
		runErr = <-errCh
		s.log.InfoContext(ctx, "fake API stopped")
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, runErr)
	}
	return nil
}
