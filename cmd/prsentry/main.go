package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prsentry/prsentry/internal/adapter/cli"
	githubadapter "github.com/prsentry/prsentry/internal/adapter/github"
	"github.com/prsentry/prsentry/internal/adapter/httpserver"
	"github.com/prsentry/prsentry/internal/adapter/llm/anthropic"
	"github.com/prsentry/prsentry/internal/adapter/observability"
	"github.com/prsentry/prsentry/internal/config"
	"github.com/prsentry/prsentry/internal/ratelimit"
	"github.com/prsentry/prsentry/internal/usecase/review"
	"github.com/prsentry/prsentry/internal/version"
)

// janitorInterval paces the limiter's idle-counter sweep.
const janitorInterval = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return
		}
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := cli.NewRootCommand(cli.Dependencies{
		NewServer: buildServer,
		Version:   version.Value(),
	})
	return root.ExecuteContext(ctx)
}

// buildServer loads configuration, applies CLI overrides, and wires the full
// service graph.
func buildServer(overrides cli.Overrides) (cli.ServerRunner, error) {
	cfg, err := config.Load(config.LoaderOptions{
		ConfigFile:  overrides.ConfigFile,
		ConfigPaths: defaultConfigPaths(),
	})
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	if overrides.PortSet {
		cfg.Server.Port = overrides.Port
	}
	if overrides.DebugSet {
		cfg.Debug = overrides.Debug
	}

	logger := observability.NewLogger(
		observability.ParseLevel(cfg.Logging.Level),
		observability.ParseFormat(cfg.Logging.Format),
	)
	metrics := observability.NewMetrics()

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter, err = ratelimit.NewLimiter(ratelimit.Policy{
			MaxRequests: cfg.RateLimit.Requests,
			Window:      cfg.RateLimit.Window(),
		}, nil)
		if err != nil {
			return nil, fmt.Errorf("rate limiter setup failed: %w", err)
		}
	}

	ghClient := githubadapter.NewClient(cfg.GitHub.Token)
	if cfg.GitHub.Timeout > 0 {
		ghClient.SetTimeout(cfg.GitHub.Timeout)
	}

	llmClient := anthropic.NewClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model)
	if cfg.Anthropic.Timeout > 0 {
		llmClient.SetTimeout(cfg.Anthropic.Timeout)
	}

	reviewer := review.NewReviewer(ghClient, llmClient, logger, metrics)
	srv := httpserver.New(reviewer, httpserver.Options{
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Debug:           cfg.Debug,
		Limiter:         limiter,
		Logger:          logger,
		Metrics:         metrics,
	})

	return &serverRunner{srv: srv, limiter: limiter, logger: logger, cfg: cfg}, nil
}

// serverRunner starts the background janitor alongside the HTTP server so
// both stop with the same context.
type serverRunner struct {
	srv     *httpserver.Server
	limiter *ratelimit.Limiter
	logger  *observability.Logger
	cfg     config.Config
}

func (r *serverRunner) Run(ctx context.Context) error {
	if r.limiter != nil {
		r.limiter.StartJanitor(ctx, janitorInterval)
		r.logger.Info("rate limiting enabled", map[string]any{
			"requests": r.cfg.RateLimit.Requests,
			"window":   r.cfg.RateLimit.Window().String(),
		})
	}
	return r.srv.Run(ctx)
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "prsentry"))
	}
	return paths
}
