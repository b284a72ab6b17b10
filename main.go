package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/voicedesk/server/internal/agent/classify"
	"github.com/voicedesk/server/internal/agent/dialog"
	"github.com/voicedesk/server/internal/agent/extract"
	"github.com/voicedesk/server/internal/agent/model"
	"github.com/voicedesk/server/internal/agent/repo"
	"github.com/voicedesk/server/internal/api"
	"github.com/voicedesk/server/internal/core"
	"github.com/voicedesk/server/internal/info"
	"github.com/voicedesk/server/internal/notify"
	"github.com/voicedesk/server/internal/store"
	logx "github.com/voicedesk/server/pkg/logger"
	pkgredis "github.com/voicedesk/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the service, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Host        string `envconfig:"HOST" default:"0.0.0.0"`
	Port        int    `envconfig:"PORT" default:"8000"`
	DatabaseDSN string `envconfig:"DATABASE_DSN" default:"voicedesk.db"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider; empty API key keeps the deterministic rule path
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Backend  model.BackendModelConfig
	Session  model.SessionConfig
	Business model.BusinessConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	ttl, err := time.ParseDuration(cfg.Session.TTL)
	if err != nil {
		logx.Fatal().Err(err).Str("ttl", cfg.Session.TTL).Msg("invalid SESSION_TTL")
	}
	timeout, err := time.ParseDuration(cfg.Backend.Timeout)
	if err != nil {
		logx.Fatal().Err(err).Str("timeout", cfg.Backend.Timeout).Msg("invalid BACKEND_TIMEOUT")
	}

	// Session store: Redis when configured, in-process otherwise.
	var sessions model.SessionRepository
	if cfg.Redis.URL != "" {
		rdb, err := cfg.Redis.New()
		if err != nil {
			logx.Fatal().Err(err).Msg("failed to initialise Redis client")
		}
		defer rdb.Close()
		sessions = repo.NewRedisSessionRepository(rdb, ttl)
		logx.Info().Msg("using Redis session store")
	} else {
		sessions = repo.NewMemorySessionRepository()
		logx.Warn().Msg("REDIS_URL not set, using in-memory session store")
	}

	records, err := store.NewSQLiteStore(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal().Err(err).Str("dsn", cfg.DatabaseDSN).Msg("failed to open record store")
	}
	defer records.Close()
	if err := records.SeedMenu(ctx); err != nil {
		logx.Fatal().Err(err).Msg("failed to seed menu items")
	}

	// Classifier and extractor: model-backed with deterministic fallback
	// when a key is configured, pure rules otherwise.
	var classifier classify.Classifier = classify.NewRuleBased()
	var extractor extract.Extractor = extract.NewRuleBased()
	if cfg.APIKey != "" {
		chatModel, err := classify.NewGeminiChatModel(ctx, classify.BackendConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Backend,
		})
		if err != nil {
			logx.Fatal().Err(err).Msg("failed to build backend chat model")
		}
		classifier = classify.NewModelBacked(chatModel, timeout)
		extractor = extract.NewModelBacked(chatModel, timeout)
		logx.Info().Str("model", cfg.Backend.Model).Msg("model backend enabled")
	} else {
		logx.Info().Msg("no API key configured, running on deterministic rules")
	}

	notifier := notify.NewLogNotifier(cfg.Business)
	finalizer := dialog.NewFinalizer(records, notifier)
	content := info.NewProvider(records, cfg.Business)
	manager := dialog.NewManager(sessions, classifier, extractor, finalizer, content)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	handler := api.NewHandler(manager, records, cfg.Business)
	handler.RegisterRoutes(e)

	logx.Info().
		Str("restaurant", cfg.Business.RestaurantName).
		Str("financial", cfg.Business.CreditUnionName).
		Msg("voice agent started")

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	if err := e.Start(addr); err != nil {
		logx.Fatal().Err(err).Msg("server stopped")
	}
}
