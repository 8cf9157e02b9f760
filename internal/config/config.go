// Package config centralizes application configuration. Values come from an
// optional YAML file merged with environment variables (PRSENTRY_ prefix);
// a local .env file is honored when present.
package config

import (
	"fmt"
	"time"
)

// Config represents the full application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	GitHub    GitHubConfig    `mapstructure:"github"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`

	// Debug gates the request-logging middleware.
	Debug bool `mapstructure:"debug"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// GitHubConfig configures the GitHub REST client.
type GitHubConfig struct {
	Token string `mapstructure:"token"`

	// WebhookSecret is accepted for deploy parity but unused: inbound
	// webhook signatures are not verified.
	WebhookSecret string `mapstructure:"webhook_secret"`

	Timeout time.Duration `mapstructure:"timeout"`
}

// AnthropicConfig configures the Messages API client.
type AnthropicConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig configures the per-client request limiter.
type RateLimitConfig struct {
	// Enabled turns the limiter on; when false every request bypasses it.
	Enabled bool `mapstructure:"enabled"`

	// Requests is the admission ceiling per window.
	Requests int `mapstructure:"requests"`

	// WindowSeconds is the window length in seconds.
	WindowSeconds int `mapstructure:"window_seconds"`
}

// Window returns the configured window as a duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // human, json
}

// Validate checks the invariants the rest of the system relies on.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Requests <= 0 {
			return fmt.Errorf("rate limit requests must be > 0, got %d", c.RateLimit.Requests)
		}
		if c.RateLimit.WindowSeconds <= 0 {
			return fmt.Errorf("rate limit window seconds must be > 0, got %d", c.RateLimit.WindowSeconds)
		}
	}
	if c.Anthropic.Model == "" {
		return fmt.Errorf("anthropic model must not be empty")
	}
	return nil
}
