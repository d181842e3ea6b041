package fakeapi

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/catalog"
	"github.com/dmitrymomot/storefront/pkg/logger"
)

// BasePath is where the API is mounted.
const BasePath = "/api/v1"

type account struct {
	user apiclient.User
	hash []byte
}

// Server holds the fake backend's state. Safe for concurrent use.
type Server struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	bcryptCost int
	now        func() time.Time
	validate   *validator.Validate
	log        *slog.Logger

	mu         sync.RWMutex
	accounts   map[int64]*account
	nextUserID int64
	products   []catalog.Product
	categories []catalog.Category
	nextProdID int64
	issued     map[string]tokenKind
	revoked    map[string]bool
	calls      map[string]int
}

type Option func(*Server)

func WithSecret(secret []byte) Option {
	return func(s *Server) {
		s.secret = secret
	}
}

// WithTokenTTL sets access and refresh token lifetimes.
func WithTokenTTL(access, refresh time.Duration) Option {
	return func(s *Server) {
		s.accessTTL = access
		s.refreshTTL = refresh
	}
}

// WithClock replaces time.Now for token issuing and validation.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithBcryptCost lowers hashing cost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Server) {
		s.bcryptCost = cost
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSampleData seeds categories and products.
func WithSampleData() Option {
	return func(s *Server) {
		s.seed()
	}
}

func New(opts ...Option) *Server {
	s := &Server{
		accessTTL:  30 * time.Minute,
		refreshTTL: 7 * 24 * time.Hour,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		validate:   newValidator(),
		log:        logger.Discard(),
		accounts:   make(map[int64]*account),
		issued:     make(map[string]tokenKind),
		revoked:    make(map[string]bool),
		calls:      make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.secret) == 0 {
		s.secret = make([]byte, 32)
		_, _ = rand.Read(s.secret)
	}
	s.log = s.log.With(logger.Component("fakeapi"))
	return s
}

// Handler returns the router with every route mounted under BasePath.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.countCalls)

	r.Route(BasePath, func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.Post("/refresh", s.refresh)
			r.With(s.requireUser).Get("/me", s.me)
		})
		r.Route("/users/me", func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/", s.me)
			r.Put("/", s.updateProfile)
			r.Put("/password", s.updatePassword)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.listProducts)
			r.Get("/featured", s.featuredProducts)
			r.Get("/categories", s.listCategories)
			r.Get("/slug/{slug}", s.productBySlug)
			r.Get("/{productID}", s.productByID)
		})
	})
	return r
}

// Calls reports how many requests reached a route, keyed like
// "POST /api/v1/auth/refresh".
func (s *Server) Calls(route string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[route]
}

// ResetCalls zeroes all counters.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

func (s *Server) countCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.calls[key]++
		s.mu.Unlock()
	})
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}
