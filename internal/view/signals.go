package view

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/riskdesk/console/internal/store"
)

// DecodeSignals parses a top_signals_json string. Empty or malformed input
// yields an empty slice; the failure is logged and never returned.
func DecodeSignals(raw string) []store.Signal {
	if strings.TrimSpace(raw) == "" {
		return []store.Signal{}
	}

	var signals []store.Signal
	if err := json.Unmarshal([]byte(raw), &signals); err != nil {
		slog.Debug("signals_decode_failed", "error", err, "raw", truncate(raw, 64))
		return []store.Signal{}
	}
	if signals == nil {
		return []store.Signal{}
	}
	return signals
}

// SignalLabel renders a signal name for display.
func SignalLabel(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

// SplitReasons splits the "|" delimited reasons field, trimming each piece
// and dropping empty ones.
func SplitReasons(raw string) []string {
	reasons := []string{}
	for _, part := range strings.Split(raw, "|") {
		if r := strings.TrimSpace(part); r != "" {
			reasons = append(reasons, r)
		}
	}
	return reasons
}
