package server

import (
	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unpackhq/unpack/internal/observability"
	"github.com/unpackhq/unpack/internal/server/handlers"
	servermw "github.com/unpackhq/unpack/internal/server/middleware"
)

func (s *Server) registerRoutes() {
	s.router.Get("/", handlers.RootHandler)

	// Rate limiting and the body cap apply to /simplify only so health checks and
	// scrapes never consume a client's allowance.
	s.router.Group(func(r chi.Router) {
		r.Use(servermw.RateLimit(s.opts.RateLimiter, rejectRateLimited))
		r.Use(servermw.BodyLimit(s.opts.MaxBodyBytes, rejectPayloadTooLarge))
		r.Method("POST", "/simplify", handlers.NewSimplifyHandler(s.opts.Simplifier))
	})

	hm := s.opts.Health
	s.router.Get("/health", hm.HealthHandler)
	s.router.Get("/health/live", hm.LivenessHandler)
	s.router.Get("/health/ready", hm.ReadinessHandler)
	s.router.Get("/health/startup", hm.StartupHandler)

	s.router.Get("/version", handlers.VersionHandler)
	s.router.Get("/metrics", MetricsHandler)

	s.registerAdminEndpoint()
}

// registerAdminEndpoint mounts POST /admin/signal when an admin token is set.
func (s *Server) registerAdminEndpoint() {
	logger := observability.ServerLogger

	if s.opts.AdminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no UNPACK_ADMIN_TOKEN set)")
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: s.opts.AdminToken,
		RateLimit: 10,
		RateBurst: 5,
		Manager:   nil,
	})
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("auth", "bearer token"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
