package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskdesk/console/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestSetupLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger("INFO", &buf)

	logger.Debug("hidden")
	logger.Info("snapshot_applied", "items", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=snapshot_applied items=3")
	assert.Regexp(t, `time="\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}"`, out)
}

func TestOpenLogOutput(t *testing.T) {
	w, closeFn, err := openLogOutput(&config.Config{EnableTUI: false, LogFile: "ignored.log"})
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, w)
	closeFn()

	path := filepath.Join(t.TempDir(), "nested", "riskdesk.log")
	w, closeFn, err = openLogOutput(&config.Config{EnableTUI: true, LogFile: path})
	require.NoError(t, err)
	setupLogger("INFO", w).Info("poller_started")
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=poller_started")
}

type slowServer struct {
	drain    time.Duration
	err      error
	finished atomic.Bool
}

func (s *slowServer) Run(ctx context.Context) error {
	<-ctx.Done()
	time.Sleep(s.drain)
	s.finished.Store(true)
	return s.err
}

func TestServeHTTPWaitsForShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &slowServer{drain: 50 * time.Millisecond}

	done := serveHTTP(ctx, cancel, srv)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("server goroutine did not finish")
	}
	assert.True(t, srv.finished.Load(), "done closes only after Run returned")
}

func TestServeHTTPErrorCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failing := runnerFunc(func(context.Context) error { return errors.New("listen tcp: address already in use") })
	done := serveHTTP(ctx, cancel, failing)

	<-done
	assert.Error(t, ctx.Err())
}

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

func TestClosedChan(t *testing.T) {
	select {
	case <-closedChan():
	default:
		t.Fatal("channel should be closed")
	}
}
