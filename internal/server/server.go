package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/unpackhq/unpack/internal/core/engine"
	apperrors "github.com/unpackhq/unpack/internal/errors"
	"github.com/unpackhq/unpack/internal/observability"
	"github.com/unpackhq/unpack/internal/server/handlers"
	servermw "github.com/unpackhq/unpack/internal/server/middleware"
)

// Options carries the collaborators and limits the server is built with.
type Options struct {
	Host string
	Port int

	Simplifier  handlers.Simplifier
	RateLimiter *engine.RateLimiter
	Health      *handlers.HealthManager
	CORS        servermw.CORSOptions

	MaxBodyBytes int64
	AdminToken   string

	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server is the Unpack HTTP façade.
type Server struct {
	router *chi.Mux
	server *http.Server
	opts   Options
}

// New builds the router. Middleware runs outermost first: RealIP (only with
// TrustProxy), request ID, metrics, panic recovery, CORS.
func New(opts Options) *Server {
	opts = withDefaults(opts)

	r := chi.NewRouter()
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.Recovery)
	r.Use(servermw.CORS(opts.CORS))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewNotFoundError("The requested resource was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"))
	})

	s := &Server{router: r, opts: opts}

	s.registerRoutes()

	return s
}

func withDefaults(opts Options) Options {
	if opts.Host == "" {
		opts.Host = "0.0.0.0"
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	// Provider calls may take up to the dispatch timeout.
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 90 * time.Second
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 120 * time.Second
	}
	if opts.Health == nil {
		opts.Health = handlers.NewHealthManager(handlers.CurrentVersion().App.Version)
	}
	return opts
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	addr := s.Addr()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	if logger := observability.ServerLogger; logger != nil {
		logger.Info(fmt.Sprintf("Unpack API running on port %d", s.opts.Port),
			zap.String("host", s.opts.Host),
			zap.Int("port", s.opts.Port),
			zap.String("addr", addr))
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if logger := observability.ServerLogger; logger != nil {
		logger.Info("Shutting down HTTP server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
}

func (s *Server) Port() int {
	return s.opts.Port
}
