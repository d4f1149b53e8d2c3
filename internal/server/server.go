package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/minibank/internal/auth"
	"github.com/hongminglow/minibank/internal/config"
	"github.com/hongminglow/minibank/internal/http/handlers"
	"github.com/hongminglow/minibank/internal/http/respond"
	"github.com/hongminglow/minibank/internal/middleware"
	"github.com/hongminglow/minibank/internal/service"
	"github.com/hongminglow/minibank/internal/storage"
	"github.com/hongminglow/minibank/internal/validate"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store, log logrus.FieldLogger) (*Server, error) {
	handler, err := NewHandler(cfg, store, log)
	if err != nil {
		return nil, err
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return &Server{inner: httpServer}, nil
}

// NewHandler builds the full middleware and route tree over store.
func NewHandler(cfg config.Config, store storage.Store, log logrus.FieldLogger) (http.Handler, error) {
	v := validate.New()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	users, err := service.NewUsers(store, hasher, tokens, v, log.WithField("component", "users"))
	if err != nil {
		return nil, fmt.Errorf("init users: %w", err)
	}
	accounts := service.NewAccounts(store, v, log.WithField("component", "accounts"))
	ledger := service.NewLedger(store, v, log.WithField("component", "ledger"))

	debug := cfg.IsDevelopment()
	authH := handlers.NewAuthHandler(users, log, debug)
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute)

	root := mux.NewRouter()
	root.NotFoundHandler = http.HandlerFunc(notFound)
	root.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	handlers.NewHealthHandler(time.Now(), store, log).Register(root)
	authH.RegisterPublic(root, loginLimiter.Middleware)

	protected := root.NewRoute().Subrouter()
	protected.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	protected.Use(middleware.Auth(tokens, log))
	authH.RegisterProtected(protected)
	handlers.NewUserHandler(users, log, debug).Register(protected)
	handlers.NewAccountHandler(accounts, log, debug).Register(protected)
	handlers.NewTransactionHandler(ledger, log, debug).Register(protected)

	var h http.Handler = root
	h = middleware.BodyLimit(cfg.MaxBodyBytes, h)
	h = middleware.CORS(cfg.CORSOrigins, h)
	h = middleware.Recover(log, h)
	h = middleware.Logging(log, h)
	return h, nil
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	respond.Error(w, http.StatusNotFound, "Route not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Addr is the address the server binds to.
func (s *Server) Addr() string {
	return s.inner.Addr
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
