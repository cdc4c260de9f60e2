package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"interview-coach/internal/app"
	"interview-coach/internal/config"
	"interview-coach/internal/evaluation"
	"interview-coach/internal/metrics"
	"interview-coach/internal/server"
	"interview-coach/internal/storage"
	"interview-coach/internal/telegram"
)

func main() {
	cfg, err := config.LoadAppConfig()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("loading configuration")
	}

	logger := newLogger(cfg)
	logger.Info().Msg("🚀 starting interview coach")

	catalog, err := config.Load(cfg.ContentFile)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.ContentFile).Msg("loading content catalog")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.NewMetrics()

	evaluator, err := evaluation.NewFromConfig(ctx, cfg.AI, m, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("initializing AI client")
	}
	logger.Info().Fields(cfg.AI.GetModelInfo()).Msg("AI model")

	preferences, closePreferences, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("opening preference store")
	}
	defer func() {
		if err := closePreferences(); err != nil {
			logger.Warn().Err(err).Msg("closing preference store")
		}
	}()

	deps := app.Deps{
		Evaluator:   evaluator,
		Coach:       evaluator,
		Catalog:     catalog,
		Preferences: preferences,
		Metrics:     m,
		Logger:      logger,
	}
	bot := telegram.New(cfg.Telegram.Token, cfg.Telegram.BaseURL, logger)
	handler := telegram.NewHandler(bot, deps, evaluator, cfg.Telegram)

	srv := server.New(cfg, m, evaluator.Available, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().
		Bool("ai_enabled", evaluator.Available()).
		Str("preferences", cfg.Storage.Backend).
		Int("questions", len(catalog.Questions)).
		Int("exam_questions", len(catalog.Exam)).
		Msg("🤖 telegram bot running, waiting for messages")

	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("polling stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("stopped")
}

func newLogger(cfg *config.AppConfig) zerolog.Logger {
	if cfg.IsDevelopment() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
