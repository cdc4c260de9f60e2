// Package server exposes the operational HTTP endpoints next to the bot.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"interview-coach/internal/config"
	"interview-coach/internal/metrics"
)

const serviceName = "interview-coach"

// HealthResponse is the payload of GET /healthz.
type HealthResponse struct {
	Status      string    `json:"status"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	AIEnabled   bool      `json:"ai_enabled"`
	AIProvider  string    `json:"ai_provider,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type Server struct {
	app    *fiber.App
	cfg    *config.AppConfig
	logger zerolog.Logger
}

// New wires /healthz and /metrics. aiEnabled reports whether an evaluation
// backend is configured.
func New(cfg *config.AppConfig, m *metrics.Metrics, aiEnabled func() bool, logger zerolog.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
	})

	s := &Server{
		app:    app,
		cfg:    cfg,
		logger: logger.With().Str("component", "server").Logger(),
	}

	app.Get("/healthz", s.healthCheck(aiEnabled))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))
	return s
}

func (s *Server) healthCheck(aiEnabled func() bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Service:     serviceName,
			Environment: s.cfg.Env,
			Timestamp:   time.Now().UTC(),
		}
		if aiEnabled != nil && aiEnabled() {
			payload.AIEnabled = true
			payload.AIProvider = s.cfg.AI.Provider
		}
		return c.JSON(payload)
	}
}

// App returns the underlying fiber app, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start blocks serving on the configured port.
func (s *Server) Start() error {
	addr := s.cfg.HTTPAddress()
	s.logger.Info().Str("addr", addr).Msg("http server listening")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
