package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	ListenAddr  string `envconfig:"LISTEN_ADDR" default:":8080"`

	// Storage
	DBPath string `envconfig:"DB_PATH" default:"personalizer.db"`

	// Extraction collaborator (scraper + brand analyzer)
	ScraperURL        string        `envconfig:"SCRAPER_URL" default:"http://localhost:9101"`
	AnalyzerURL       string        `envconfig:"ANALYZER_URL" default:"http://localhost:9102"`
	ExtractionTimeout time.Duration `envconfig:"EXTRACTION_TIMEOUT" default:"90s"`

	// Scene code editor collaborator
	EditorURL     string        `envconfig:"EDITOR_URL" default:"http://localhost:9103"`
	EditorTimeout time.Duration `envconfig:"EDITOR_TIMEOUT" default:"120s"`

	// Apply pipeline
	ApplyWorkers int `envconfig:"APPLY_WORKERS" default:"4"`

	// Theme defaults (optional YAML override for the built-in default theme)
	DefaultThemePath string `envconfig:"DEFAULT_THEME_PATH"`

	// API auth
	AuthMode  string `envconfig:"AUTH_MODE" default:"api-key"` // "api-key", "jwt", "none"
	APIKey    string `envconfig:"API_KEY"`
	JWTSecret string `envconfig:"JWT_SECRET"`

	// API hardening
	RateLimitRPS   int    `envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst int    `envconfig:"RATE_LIMIT_BURST" default:"200"`
	CORSOrigins    string `envconfig:"CORS_ORIGINS"`

	// Slack notifications (optional — service starts without Slack)
	SlackBotToken string `envconfig:"SLACK_BOT_TOKEN"`
	SlackChannel  string `envconfig:"SLACK_CHANNEL"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.AuthMode {
	case "none":
	case "api-key":
		if c.APIKey == "" && c.Environment != "development" {
			return fmt.Errorf("API_KEY is required when AUTH_MODE=api-key outside development")
		}
	case "jwt":
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE: %s", c.AuthMode)
	}

	if c.ApplyWorkers <= 0 {
		return fmt.Errorf("APPLY_WORKERS must be positive")
	}
	return nil
}

// SlackEnabled returns true if Slack notifications are configured.
func (c *Config) SlackEnabled() bool {
	return c.SlackBotToken != "" && c.SlackChannel != ""
}
