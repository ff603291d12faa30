// Package server exposes the derived decision view over HTTP for headless use
// and browser dashboards.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/riskdesk/console/internal/metrics"
	"github.com/riskdesk/console/internal/poller"
	"github.com/riskdesk/console/internal/realtime"
	"github.com/riskdesk/console/internal/store"
	"golang.org/x/time/rate"
)

// StateSource is the part of the polling store the HTTP surface reads and drives.
type StateSource interface {
	State() poller.State
	Refresh()
	SetRiskLevel(level store.RiskLevel) error
}

// Config holds router configuration
type Config struct {
	Logger   *slog.Logger
	Source   StateSource
	Tracker  *metrics.Tracker
	Hub      *realtime.Hub
	PageSize int

	// Intent endpoints are limited per client to RatePerSecond with bursts of
	// RateBurst.
	RatePerSecond float64
	RateBurst     int
}

// NewRouter creates the HTTP router.
func NewRouter(cfg Config) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 1
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 5
	}

	h := &handlers{
		source:   cfg.Source,
		tracker:  cfg.Tracker,
		hub:      cfg.Hub,
		pageSize: cfg.PageSize,
		started:  time.Now(),
	}
	limiter := NewRateLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst)

	r := chi.NewRouter()

	// Global middleware. RemoteAddr must stay the connecting peer for the
	// rate limiter, so forwarded headers are not honored.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger(cfg.Logger))

	r.Get("/healthz", h.health)
	r.Handle("/metrics", metrics.Handler())
	if cfg.Hub != nil {
		r.Get("/ws", cfg.Hub.HandleWebSocket)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/view", h.getView)
		r.Get("/transactions/{orderID}", h.transaction)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/refresh", h.refresh)
			r.Post("/risk-level", h.setRiskLevel)
		})
	})

	return r
}

// Server serves the router until its context is cancelled.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// New creates a Server listening on addr.
func New(addr string, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http_server_started", "addr", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("http_server_stopped")
	return nil
}
