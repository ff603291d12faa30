// Package main is the entry point for the RiskDesk decision console.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/riskdesk/console/internal/config"
	"github.com/riskdesk/console/internal/ingest"
	"github.com/riskdesk/console/internal/poller"
	"github.com/riskdesk/console/internal/realtime"
	"github.com/riskdesk/console/internal/server"
	"github.com/riskdesk/console/internal/ui"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// The TUI owns stdout, so logs go to a file while it runs.
	logOut, closeLog, err := openLogOutput(cfg)
	if err != nil {
		slog.Error("failed to open log file", "path", cfg.LogFile, "error", err)
		os.Exit(1)
	}
	defer closeLog()

	logger := setupLogger(cfg.LogLevel, logOut)
	slog.SetDefault(logger)

	slog.Info("riskdesk starting",
		"version", "1.0.0",
	)

	slog.Info("config_loaded",
		"risk_api_url", cfg.RiskAPIURL,
		"poll_interval", cfg.PollInterval,
		"fetch_limit", cfg.FetchLimit,
		"fetch_timeout", cfg.FetchTimeout,
		"initial_risk_level", cfg.InitialRiskLevel,
		"page_size", cfg.PageSize,
		"enable_tui", cfg.EnableTUI,
		"http_addr", cfg.HTTPAddr,
	)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	client := ingest.NewClient(cfg.RiskAPIURL, cfg.FetchTimeout)
	decisions := poller.New(client, poller.Options{
		Interval:         cfg.PollInterval,
		Limit:            cfg.FetchLimit,
		InitialRiskLevel: cfg.InitialRiskLevel,
	})

	// Optional HTTP surface with the live stream. srvDone closes once the
	// server has finished shutting down.
	srvDone := closedChan()
	if cfg.HTTPAddr != "" {
		hub := realtime.NewHub(logger)
		go hub.Run(ctx)
		decisions.Subscribe(hub.PublishState)

		srv := server.New(cfg.HTTPAddr, server.Config{
			Logger:        logger,
			Source:        decisions,
			Tracker:       decisions.Tracker(),
			Hub:           hub,
			PageSize:      cfg.PageSize,
			RatePerSecond: cfg.APIRatePerSecond,
			RateBurst:     cfg.APIRateBurst,
		})
		srvDone = serveHTTP(ctx, cancel, srv)
	}

	// The app subscribes before the first fetch is issued.
	var app *ui.App
	if cfg.EnableTUI {
		app = ui.NewApp(decisions, decisions.Tracker(), cfg.PageSize)
	}

	if err := decisions.Start(ctx); err != nil {
		slog.Error("failed to start poller", "error", err)
		os.Exit(1)
	}

	slog.Info("console_started",
		"risk_level", decisions.State().RiskLevel,
		"tui_enabled", cfg.EnableTUI,
	)

	// Start TUI or run in background mode
	if app != nil {
		tuiDone := make(chan struct{})
		go func() {
			defer close(tuiDone)
			if err := app.Run(); err != nil {
				slog.Error("tui_error", "error", err)
			}
		}()

		// Wait for shutdown signal, the user quitting, or a fatal error
		select {
		case sig := <-sigChan:
			slog.Info("shutdown_signal_received", "signal", sig.String())
			app.Stop()
		case <-tuiDone:
			slog.Info("tui_closed")
		case <-ctx.Done():
			app.Stop()
		}
	} else {
		select {
		case sig := <-sigChan:
			slog.Info("shutdown_signal_received", "signal", sig.String())
		case <-ctx.Done():
		}
	}

	cancel()

	// Graceful shutdown
	slog.Info("shutting_down", "status", "draining http server")
	<-srvDone

	slog.Info("shutting_down", "status", "stopping poller")
	decisions.Stop()

	slog.Info("shutdown_complete")
}

type runner interface {
	Run(ctx context.Context) error
}

// serveHTTP runs srv in the background. A server error cancels the process
// context. The returned channel closes when Run has returned.
func serveHTTP(ctx context.Context, cancel context.CancelFunc, srv runner) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Run(ctx); err != nil {
			slog.Error("http_server_error", "error", err)
			cancel()
		}
	}()
	return done
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// openLogOutput returns stdout in headless mode and the configured log file
// when the TUI is enabled.
func openLogOutput(cfg *config.Config) (io.Writer, func(), error) {
	if !cfg.EnableTUI || cfg.LogFile == "" {
		return os.Stdout, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// parseLevel maps a LOG_LEVEL value to a slog level, defaulting to INFO.
func parseLevel(levelStr string) slog.Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupLogger creates a structured logger with the specified level.
// Format: time=2025-01-04 14:32:01 level=INFO msg=message key=value
func setupLogger(levelStr string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(levelStr),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format("2006-01-02 15:04:05"))
				}
			}
			return a
		},
	}

	handler := slog.NewTextHandler(w, opts)
	return slog.New(handler)
}
