package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/prsentry/prsentry/internal/adapter/observability"
	"github.com/prsentry/prsentry/internal/ratelimit"
)

// Options carries everything the server needs beyond its handlers.
type Options struct {
	Port            int
	ShutdownTimeout time.Duration
	Debug           bool

	// Limiter may be nil, which disables metering.
	Limiter *ratelimit.Limiter
	Logger  *observability.Logger
	Metrics *observability.Metrics
}

// Server is the HTTP front of the service.
type Server struct {
	opts    Options
	handler http.Handler
	httpSrv *http.Server
}

// New assembles the router. Middleware runs outermost-first: the request
// counter sees every request's final status, the limiter rejects before any
// handler work, and the debug logger observes only admitted traffic.
func New(reviewer ReviewRunner, opts Options) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	r := chi.NewRouter()
	r.Use(CountRequests(opts.Metrics))
	r.Use(RateLimit(opts.Limiter, opts.Logger, opts.Metrics))
	r.Use(RequestLogger(opts.Logger, opts.Debug))

	r.Method(http.MethodPost, "/webhooks/github", NewWebhookHandler(reviewer, opts.Logger))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	return &Server{
		opts:    opts,
		handler: r,
		httpSrv: &http.Server{
			Addr:         fmt.Sprintf(":%d", opts.Port),
			Handler:      r,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 3 * time.Minute,
			IdleTimeout:  time.Minute,
		},
	}
}

// Handler exposes the assembled router for in-process testing.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	if s.opts.Logger != nil {
		s.opts.Logger.Info("server listening", map[string]any{"addr": s.httpSrv.Addr})
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
