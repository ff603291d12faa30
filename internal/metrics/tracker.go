// Package metrics provides feed health tracking and Prometheus instrumentation.
package metrics

import (
	"sync"
	"time"
)

// FeedSnapshot is a point-in-time view of feed health.
type FeedSnapshot struct {
	Uptime              time.Duration
	PollsTotal          int64
	FailuresTotal       int64
	ConsecutiveFailures int
	DiscardedTotal      int64
	LastSuccess         time.Time
	LastFailure         time.Time
	LastLatency         time.Duration
	InFlight            int
}

// Tracker provides thread-safe feed health tracking.
type Tracker struct {
	mu                  sync.RWMutex
	startTime           time.Time
	pollsTotal          int64
	failuresTotal       int64
	consecutiveFailures int
	discardedTotal      int64
	lastSuccess         time.Time
	lastFailure         time.Time
	lastLatency         time.Duration
	inFlight            int
	now                 func() time.Time
}

// NewTracker creates a new Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		startTime: time.Now(),
		now:       time.Now,
	}
}

// FetchStarted records a fetch being issued.
func (t *Tracker) FetchStarted() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pollsTotal++
	t.inFlight++
}

// FetchSucceeded records an applied snapshot.
func (t *Tracker) FetchSucceeded(latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finish(latency)
	t.consecutiveFailures = 0
	t.lastSuccess = t.now()
	SnapshotTimestamp.Set(float64(t.lastSuccess.Unix()))
}

// FetchFailed records a fetch that produced no usable data.
func (t *Tracker) FetchFailed(latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finish(latency)
	t.failuresTotal++
	t.consecutiveFailures++
	t.lastFailure = t.now()
}

// FetchDiscarded records a completion superseded by a newer fetch.
func (t *Tracker) FetchDiscarded(latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finish(latency)
	t.discardedTotal++
	FetchDiscardedTotal.Inc()
}

// finish must be called with lock held.
func (t *Tracker) finish(latency time.Duration) {
	if t.inFlight > 0 {
		t.inFlight--
	}
	t.lastLatency = latency
}

// Snapshot returns a point-in-time snapshot of feed health.
func (t *Tracker) Snapshot() FeedSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return FeedSnapshot{
		Uptime:              t.now().Sub(t.startTime),
		PollsTotal:          t.pollsTotal,
		FailuresTotal:       t.failuresTotal,
		ConsecutiveFailures: t.consecutiveFailures,
		DiscardedTotal:      t.discardedTotal,
		LastSuccess:         t.lastSuccess,
		LastFailure:         t.lastFailure,
		LastLatency:         t.lastLatency,
		InFlight:            t.inFlight,
	}
}
