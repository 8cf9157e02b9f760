package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderOptions describes how configuration should be discovered.
type LoaderOptions struct {
	// ConfigFile, when set, is used verbatim and must exist. Otherwise the
	// ConfigPaths are searched for FileName.{yaml,yml}.
	ConfigFile  string
	ConfigPaths []string
	FileName    string
	EnvPrefix   string
}

// Load returns the merged configuration from an optional config file and
// environment variables. A .env file in the working directory is loaded
// first so local development matches the deployed environment surface.
func Load(opts LoaderOptions) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	name := opts.FileName
	if name == "" {
		name = "prsentry"
	}

	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = "PRSENTRY"
	}
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AllowEmptyEnv(true)

	setDefaults(v)

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = locateConfigFile(name, opts.ConfigPaths)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("github.token", "")
	v.SetDefault("github.webhook_secret", "")
	v.SetDefault("github.timeout", 30*time.Second)

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.timeout", 90*time.Second)

	// Limiter defaults mirror the deployed service: off unless enabled,
	// 120 requests per minute window.
	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests", 120)
	v.SetDefault("rate_limit.window_seconds", 60)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "human")

	v.SetDefault("debug", false)
}

func locateConfigFile(name string, paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{"yaml", "yml"} {
			candidate := filepath.Join(dir, fmt.Sprintf("%s.%s", name, ext))
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}
	return ""
}
