package main

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	"github.com/mrdaeback/voice-order/internal/core"
	"github.com/mrdaeback/voice-order/internal/events"
	logx "github.com/mrdaeback/voice-order/pkg/logger"
	"github.com/mrdaeback/voice-order/pkg/postgres"
	pkgredis "github.com/mrdaeback/voice-order/pkg/redis"
)

type HTTPConfig struct {
	Addr         string        `envconfig:"HTTP_ADDR" default:":8080"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"60s"`
}

type EventsConfig struct {
	NATSURL      string `envconfig:"NATS_URL"`
	OrderSubject string `envconfig:"NATS_ORDER_SUBJECT" default:"orders.placed"`
}

// AppConfig defines all configurable parameters of the service,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string           `envconfig:"LOG_LEVEL"`

	// Infrastructure
	HTTP            HTTPConfig
	Database        postgres.Config
	Redis           pkgredis.Config
	CatalogCacheTTL time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"10m"`
	Events          EventsConfig
	AutoMigrate     bool `envconfig:"AUTO_MIGRATE" default:"false"`

	// Auth
	JWTAccessSecret string `envconfig:"JWT_ACCESS_SECRET" required:"true"`

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	OrderModel    model.OrderModelConfig
	Transcription model.TranscriptionConfig
	Prompt        model.OrderPromptConfig
	Conversation  model.ConversationConfig
}

func loadDotenv() {
	if err := godotenv.Load(".env"); err != nil {
		logx.Debug().Err(err).Msg("no .env file loaded")
	}
}

func loadConfig() (AppConfig, error) {
	loadDotenv()
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("process environment config: %w", err)
	}
	if cfg.Events.OrderSubject == "" {
		cfg.Events.OrderSubject = events.DefaultOrderSubject
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Environment, Level: cfg.LogLevel})
	return cfg, nil
}

// loadDatabaseConfig reads only what the migrate command needs.
func loadDatabaseConfig() (postgres.Config, error) {
	loadDotenv()
	var cfg postgres.Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("process database config: %w", err)
	}
	return cfg, nil
}
