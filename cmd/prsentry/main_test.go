package main

import (
	"testing"

	"github.com/prsentry/prsentry/internal/adapter/cli"
)

func TestBuildServer_AppliesOverrides(t *testing.T) {
	t.Setenv("PRSENTRY_GITHUB_TOKEN", "ghp_test")
	t.Setenv("PRSENTRY_ANTHROPIC_API_KEY", "sk-ant-test")

	srv, err := buildServer(cli.Overrides{Port: 9191, PortSet: true, Debug: true, DebugSet: true})
	if err != nil {
		t.Fatalf("buildServer() error = %v", err)
	}

	runner, ok := srv.(*serverRunner)
	if !ok {
		t.Fatalf("buildServer() returned %T, want *serverRunner", srv)
	}
	if runner.cfg.Server.Port != 9191 {
		t.Errorf("port = %d, want 9191", runner.cfg.Server.Port)
	}
	if !runner.cfg.Debug {
		t.Errorf("debug override not applied")
	}
	if runner.limiter != nil {
		t.Errorf("limiter should be nil when rate limiting is disabled")
	}
}

func TestBuildServer_EnablesLimiter(t *testing.T) {
	t.Setenv("PRSENTRY_RATE_LIMIT_ENABLED", "true")
	t.Setenv("PRSENTRY_RATE_LIMIT_REQUESTS", "10")

	srv, err := buildServer(cli.Overrides{})
	if err != nil {
		t.Fatalf("buildServer() error = %v", err)
	}
	if srv.(*serverRunner).limiter == nil {
		t.Errorf("limiter should be built when rate limiting is enabled")
	}
}

func TestBuildServer_RejectsInvalidConfig(t *testing.T) {
	t.Setenv("PRSENTRY_RATE_LIMIT_ENABLED", "true")
	t.Setenv("PRSENTRY_RATE_LIMIT_REQUESTS", "-1")

	if _, err := buildServer(cli.Overrides{}); err == nil {
		t.Fatalf("buildServer() should fail on invalid rate limit config")
	}
}
