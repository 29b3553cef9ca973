package api

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/brandforge/personalizer/internal/health"
	"github.com/brandforge/personalizer/internal/metrics"
	"github.com/brandforge/personalizer/internal/requestid"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	ListenAddr  string
	AuthConfig  AuthConfig
	RateLimit   RateLimitConfig
	CORSOrigins string
	Version     string
}

// Server is the personalization API Fiber application.
type Server struct {
	app      *fiber.App
	handlers *Handlers
	logger   zerolog.Logger
	config   ServerConfig
}

// NewServer creates and configures the API server.
func NewServer(
	cfg ServerConfig,
	targets TargetService,
	tokenizer TokenizeService,
	applier ApplyService,
	checker *health.Checker,
	metricsCollector *metrics.Metrics,
	logger zerolog.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler(logger),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ReadBufferSize:        8192,
		WriteBufferSize:       8192,
	})

	handlers := NewHandlers(targets, tokenizer, applier, checker, cfg.Version, logger)

	s := &Server{
		app:      app,
		handlers: handlers,
		logger:   logger.With().Str("component", "api_server").Logger(),
		config:   cfg,
	}

	s.setupMiddleware(cfg, logger)
	s.setupRoutes(handlers, metricsCollector)

	return s
}

func (s *Server) setupMiddleware(cfg ServerConfig, logger zerolog.Logger) {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// Request ID middleware
	s.app.Use(func(c *fiber.Ctx) error {
		_, reqID := requestid.New(c.Context())
		c.Set("X-Request-ID", reqID)
		c.Locals("request_id", reqID)
		return c.Next()
	})

	if cfg.CORSOrigins != "" {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
			AllowMethods: "GET, POST, OPTIONS",
		}))
	}

	if cfg.RateLimit.RPS > 0 {
		s.app.Use(NewRateLimitMiddleware(cfg.RateLimit))
	}

	s.app.Use(NewAuthMiddleware(cfg.AuthConfig, logger))

	// Audit middleware (log every request)
	s.app.Use(func(c *fiber.Ctx) error {
		path := c.Path()
		// Skip noisy probe logging
		if path == "/healthz" || path == "/readyz" || path == "/metrics" {
			return c.Next()
		}

		logger.Info().
			Str("method", c.Method()).
			Str("path", path).
			Str("ip", c.IP()).
			Str("request_id", fmt.Sprintf("%v", c.Locals("request_id"))).
			Msg("api request")

		return c.Next()
	})
}

func (s *Server) setupRoutes(h *Handlers, metricsCollector *metrics.Metrics) {
	// Probe endpoints (no auth required, handled in auth middleware)
	s.app.Get("/healthz", h.Liveness)
	s.app.Get("/readyz", h.Readiness)

	if metricsCollector != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(metricsCollector.Handler()))
	}

	v1 := s.app.Group("/api/v1")

	v1.Post("/projects/:projectID/targets", h.CreateTarget)
	v1.Get("/projects/:projectID/targets", h.ListTargets)
	v1.Get("/targets/:id", h.GetTarget)
	v1.Post("/targets/:id/refresh", h.RefreshTarget)

	v1.Post("/projects/:projectID/tokenize", h.TokenizeProject)
	v1.Post("/projects/:projectID/apply", h.ApplyBrand)

	v1.Get("/health", h.HealthDetail)
}

// Start starts the server. Blocks until stopped.
func (s *Server) Start() error {
	addr := s.config.ListenAddr
	if addr == "" {
		addr = ":8080"
	}

	s.logger.Info().Str("addr", addr).Msg("api server starting")
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.logger.Info().Msg("api server shutting down")
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

func customErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error().
			Err(err).
			Int("status", code).
			Str("path", c.Path()).
			Str("method", c.Method()).
			Msg("unhandled error")

		detail := err.Error()
		if code == fiber.StatusInternalServerError {
			detail = "An internal error occurred"
		}

		return c.Status(code).JSON(ProblemDetail{
			Type:     "internal_error",
			Title:    "Internal Server Error",
			Status:   code,
			Detail:   detail,
			Instance: c.Path(),
		})
	}
}
