package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brandforge/personalizer/internal/api"
	"github.com/brandforge/personalizer/internal/apply"
	"github.com/brandforge/personalizer/internal/config"
	"github.com/brandforge/personalizer/internal/editor"
	"github.com/brandforge/personalizer/internal/extract"
	"github.com/brandforge/personalizer/internal/health"
	"github.com/brandforge/personalizer/internal/metrics"
	"github.com/brandforge/personalizer/internal/notify"
	"github.com/brandforge/personalizer/internal/scene"
	"github.com/brandforge/personalizer/internal/store"
	"github.com/brandforge/personalizer/internal/target"
	"github.com/brandforge/personalizer/internal/theme"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("listen_addr", cfg.ListenAddr).
		Str("db_path", cfg.DBPath).
		Bool("slack_enabled", cfg.SlackEnabled()).
		Msg("starting personalizer")

	// Storage
	st, err := store.New(cfg.DBPath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	// Default theme, optionally overlaid from a YAML file
	defaults, err := theme.LoadDefaults(cfg.DefaultThemePath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DefaultThemePath).Msg("failed to load default theme")
	}

	// Metrics
	collector := metrics.New()

	// Collaborator clients
	extractor := extract.NewClient(cfg.ScraperURL, cfg.AnalyzerURL, cfg.ExtractionTimeout, logger,
		extract.WithMetrics(collector))
	sceneEditor := editor.NewClient(cfg.EditorURL, cfg.EditorTimeout, logger,
		editor.WithMetrics(collector))

	// Pipeline components
	manager := target.NewManager(st, extractor, target.Config{
		Defaults:          defaults,
		ExtractionTimeout: cfg.ExtractionTimeout,
	}, logger)
	manager.SetMetrics(collector)

	tokenizer := scene.NewTokenizer(st, sceneEditor, logger)
	tokenizer.SetMetrics(collector)

	applier := apply.NewApplier(st, sceneEditor, cfg.ApplyWorkers, logger)
	applier.SetMetrics(collector)

	// Slack notifications (optional)
	if cfg.SlackEnabled() {
		manager.SetNotifier(notify.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackChannel, logger))
		logger.Info().Str("channel", cfg.SlackChannel).Msg("Slack notifier enabled")
	}

	// Health checks
	checker := health.NewChecker(logger)
	checker.Register("store", func(ctx context.Context) health.Status {
		if err := st.Ping(); err != nil {
			return health.StatusDown
		}
		return health.StatusOK
	})
	checker.Register("extractor", func(ctx context.Context) health.Status {
		if !extractor.Healthy(ctx) {
			return health.StatusDown
		}
		return health.StatusOK
	})
	checker.Register("editor", func(ctx context.Context) health.Status {
		if !sceneEditor.Healthy(ctx) {
			return health.StatusDown
		}
		return health.StatusOK
	})

	// API server
	server := api.NewServer(api.ServerConfig{
		ListenAddr: cfg.ListenAddr,
		AuthConfig: api.AuthConfig{
			Mode:      cfg.AuthMode,
			APIKey:    cfg.APIKey,
			JWTSecret: cfg.JWTSecret,
		},
		RateLimit: api.RateLimitConfig{
			RPS:   cfg.RateLimitRPS,
			Burst: cfg.RateLimitBurst,
		},
		CORSOrigins: cfg.CORSOrigins,
		Version:     version,
	}, manager, tokenizer, applier, checker, collector, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("api server error")
		}
	}()

	// Keep the targets-by-status gauge fresh
	stopGauge := make(chan struct{})
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			counts, err := st.CountTargetsByStatus()
			if err == nil {
				for _, status := range []string{target.StatusPending, target.StatusExtracting, target.StatusReady, target.StatusFailed} {
					collector.SetTargets(status, float64(counts[status]))
				}
			}
			select {
			case <-ticker.C:
			case <-stopGauge:
				return
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	close(stopGauge)
	if err := server.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}

	// Let in-flight extractions land before closing the store.
	manager.Wait()

	logger.Info().Msg("personalizer stopped")
}
