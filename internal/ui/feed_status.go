package ui

import (
	"fmt"
	"time"

	"github.com/riskdesk/console/internal/metrics"
	"github.com/riskdesk/console/internal/store"
	"github.com/rivo/tview"
)

// FeedStatusView displays polling health.
type FeedStatusView struct {
	textView *tview.TextView
}

// NewFeedStatusView creates a new feed status view.
func NewFeedStatusView() *FeedStatusView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)

	textView.SetTitle(" Feed Status ").SetBorder(true)

	return &FeedStatusView{
		textView: textView,
	}
}

// Widget returns the tview primitive.
func (v *FeedStatusView) Widget() tview.Primitive {
	return v.textView
}

// Update refreshes the status display.
func (v *FeedStatusView) Update(snapshot metrics.FeedSnapshot, level store.RiskLevel) {
	v.textView.Clear()

	health, healthColor := "ok", "green"
	switch {
	case snapshot.LastSuccess.IsZero() && snapshot.FailuresTotal == 0:
		health, healthColor = "starting", "yellow"
	case snapshot.ConsecutiveFailures > 0:
		health, healthColor = "degraded", "red"
	}

	text := fmt.Sprintf(`[yellow]Feed[-]
Health: [%s]%s[-]
Filter: %s
Uptime: %s

[yellow]Polls[-]
Total: %d
In flight: %d
Failures: %d (%d in a row)
Stale discarded: %d

[yellow]Latency[-]
Last: %s
Last success: %s
Last failure: %s
`,
		healthColor, health,
		riskLevelLabels[level],
		formatDuration(snapshot.Uptime),
		snapshot.PollsTotal,
		snapshot.InFlight,
		snapshot.FailuresTotal, snapshot.ConsecutiveFailures,
		snapshot.DiscardedTotal,
		formatLatency(snapshot.LastLatency),
		formatTimeAgo(snapshot.LastSuccess),
		formatTimeAgo(snapshot.LastFailure),
	)

	fmt.Fprint(v.textView, text)
}

// formatDuration formats a duration in human-readable form.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func formatLatency(d time.Duration) string {
	if d == 0 {
		return "n/a"
	}
	return d.Round(time.Millisecond).String()
}

// formatTimeAgo formats a time as "X ago".
func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	elapsed := time.Since(t)

	if elapsed < time.Minute {
		return fmt.Sprintf("%.0fs ago", elapsed.Seconds())
	}
	if elapsed < time.Hour {
		return fmt.Sprintf("%.0fm ago", elapsed.Minutes())
	}
	if elapsed < 24*time.Hour {
		return fmt.Sprintf("%.0fh ago", elapsed.Hours())
	}
	return fmt.Sprintf("%.0fd ago", elapsed.Hours()/24)
}
