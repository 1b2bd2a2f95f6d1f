package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the assistant service.
// Environment variables are automatically parsed from the ASSISTANT_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage: "auto" picks postgres when a DSN is set, sqlite otherwise.
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"assistant.db"`

	// Planner (LLM) Configuration
	PlannerBaseURL        string `envconfig:"PLANNER_BASE_URL" default:"https://api.openai.com/v1"`
	PlannerAPIKey         string `envconfig:"PLANNER_API_KEY" default:""`
	PlannerModel          string `envconfig:"PLANNER_MODEL" default:"gpt-4o-mini"`
	PlannerTimeoutSeconds int    `envconfig:"PLANNER_TIMEOUT_SECONDS" default:"30"`
}

// ResolveDefaults derives DBDriver when set to "auto" or empty and validates
// the resulting driver choice.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}

	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("DB_DRIVER=postgres requires POSTGRES_DSN")
	}
	if c.PlannerTimeoutSeconds <= 0 {
		return fmt.Errorf("PLANNER_TIMEOUT_SECONDS must be positive, got %d", c.PlannerTimeoutSeconds)
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with ASSISTANT_
// Example: ASSISTANT_HTTP_PORT, ASSISTANT_POSTGRES_DSN
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("ASSISTANT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Str("sqlite_path", cfg.SQLitePath).
		Str("planner_model", cfg.PlannerModel).
		Int("port", cfg.HTTPPort).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:           EnvTesting,
		HTTPPort:              8080,
		DBDriver:              "sqlite",
		SQLitePath:            ":memory:",
		PlannerBaseURL:        "http://localhost:0",
		PlannerModel:          "test-model",
		PlannerTimeoutSeconds: 5,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
