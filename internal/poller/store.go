// Package poller owns the current decision snapshot and keeps it fresh by
// polling the decision source on a fixed interval.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/riskdesk/console/internal/metrics"
	"github.com/riskdesk/console/internal/store"
)

const (
	// DefaultInterval is the automatic poll interval
	DefaultInterval = 15 * time.Second
	// DefaultLimit is the batch size requested per poll
	DefaultLimit = 200
	// FetchErrorMessage is the user-visible error after a failed fetch
	FetchErrorMessage = "Failed to fetch latest data"

	intentBuffer = 8
)

var (
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("poller already started")
	// ErrStopped is returned by Start after Stop.
	ErrStopped = errors.New("poller stopped")
)

// Fetcher is a fail-soft decision source: nil means the attempt produced
// nothing usable.
type Fetcher interface {
	Fetch(ctx context.Context, level store.RiskLevel, limit, offset int) *store.RiskDecisionResponse
}

// State is an immutable view of the store. Snapshot is shared and must not be
// modified by readers.
type State struct {
	Snapshot    *store.RiskDecisionResponse
	Loading     bool
	Error       string
	LastUpdated time.Time
	RiskLevel   store.RiskLevel
}

// Options configures a Store. Zero values select the defaults.
type Options struct {
	Interval         time.Duration
	Limit            int
	InitialRiskLevel store.RiskLevel
	Tracker          *metrics.Tracker
}

type intent int

const (
	intentRefresh intent = iota
	intentRiskLevel
)

// Store holds the latest snapshot and runs the polling timer.
//
// All state transitions happen under mu. Fetches run in their own goroutines
// and are tagged with a sequence number; only the completion of the most
// recently issued fetch is applied.
type Store struct {
	fetcher  Fetcher
	interval time.Duration
	limit    int
	tracker  *metrics.Tracker
	now      func() time.Time

	mu        sync.RWMutex
	state     State
	issued    uint64
	listeners []func(State)
	started   bool
	stopped   bool
	cancel    context.CancelFunc

	intents  chan intent
	done     chan struct{}
	fetches  sync.WaitGroup
	stopOnce sync.Once
}

// New creates a Store. Nothing is fetched until Start.
func New(fetcher Fetcher, opts Options) *Store {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if !opts.InitialRiskLevel.Valid() {
		opts.InitialRiskLevel = store.RiskAll
	}
	if opts.Tracker == nil {
		opts.Tracker = metrics.NewTracker()
	}

	return &Store{
		fetcher:  fetcher,
		interval: opts.Interval,
		limit:    opts.Limit,
		tracker:  opts.Tracker,
		now:      time.Now,
		state: State{
			Loading:   true,
			RiskLevel: opts.InitialRiskLevel,
		},
		intents: make(chan intent, intentBuffer),
		done:    make(chan struct{}),
	}
}

// Start performs an immediate fetch and arms the recurring poll.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	s.started = true
	s.cancel = cancel
	s.mu.Unlock()

	slog.Info("poller_started", "interval", s.interval, "limit", s.limit)

	s.issue(ctx)
	go s.run(ctx)
	return nil
}

// Stop cancels the timer and any in-flight fetch, and waits for them to
// finish. It is safe to call more than once, and a stopped store cannot be
// started again.
func (s *Store) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.stopOnce.Do(func() {
		s.mu.RLock()
		started, cancel := s.started, s.cancel
		s.mu.RUnlock()

		if !started {
			return
		}
		cancel()
		<-s.done
		s.fetches.Wait()
		slog.Info("poller_stopped")
	})
}

// Refresh fetches now and restarts the interval from this moment.
func (s *Store) Refresh() {
	s.send(intentRefresh)
}

// SetRiskLevel switches the active filter and fetches with it immediately.
// Fetches already in flight for the previous level are invalidated.
func (s *Store) SetRiskLevel(level store.RiskLevel) error {
	if !level.Valid() {
		return fmt.Errorf("set risk level: unknown level %q", level)
	}

	s.mu.Lock()
	s.issued++
	s.state.RiskLevel = level
	s.state.Loading = true
	st, listeners := s.state, s.listenersLocked()
	s.mu.Unlock()

	slog.Info("risk_level_changed", "risk_level", level)
	notify(listeners, st)
	s.send(intentRiskLevel)
	return nil
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Tracker returns the feed health tracker.
func (s *Store) Tracker() *metrics.Tracker {
	return s.tracker
}

// Subscribe registers fn to receive every state change. fn is called outside
// the store lock, from whichever goroutine made the change, and must not block.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// send delivers an intent to the run loop. Intents before Start or after Stop
// are dropped.
func (s *Store) send(i intent) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return
	}

	select {
	case s.intents <- i:
	case <-s.done:
	}
}

// run owns the ticker. Every intent resets it so the next automatic poll is a
// full interval after the intent's fetch.
func (s *Store) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.issue(ctx)
		case <-s.intents:
			ticker.Reset(s.interval)
			s.issue(ctx)
		}
	}
}

// issue starts one fetch with the currently active level.
func (s *Store) issue(ctx context.Context) {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	level := s.state.RiskLevel
	var listeners []func(State)
	if s.state.Snapshot == nil && !s.state.Loading {
		s.state.Loading = true
		listeners = s.listenersLocked()
	}
	st := s.state
	s.mu.Unlock()

	notify(listeners, st)
	s.tracker.FetchStarted()

	s.fetches.Add(1)
	go func() {
		defer s.fetches.Done()
		start := s.now()
		resp := s.fetcher.Fetch(ctx, level, s.limit, 0)
		s.complete(ctx, seq, resp, s.now().Sub(start))
	}()
}

// complete applies the result of fetch seq if it is still the latest.
func (s *Store) complete(ctx context.Context, seq uint64, resp *store.RiskDecisionResponse, latency time.Duration) {
	if ctx.Err() != nil {
		s.tracker.FetchDiscarded(latency)
		return
	}

	s.mu.Lock()
	if seq != s.issued {
		latest := s.issued
		s.mu.Unlock()
		s.tracker.FetchDiscarded(latency)
		slog.Debug("stale_response_discarded", "seq", seq, "latest", latest)
		return
	}

	ok := resp != nil && resp.OK
	if ok {
		s.state.Snapshot = resp
		s.state.Error = ""
		s.state.LastUpdated = s.now()
	} else {
		s.state.Error = FetchErrorMessage
	}
	s.state.Loading = false
	st, listeners := s.state, s.listenersLocked()
	s.mu.Unlock()

	if ok {
		s.tracker.FetchSucceeded(latency)
		metrics.SnapshotItems.Set(float64(len(resp.Items)))
		slog.Debug("snapshot_applied", "seq", seq, "risk_level", st.RiskLevel, "items", len(resp.Items), "count", resp.Count)
	} else {
		s.tracker.FetchFailed(latency)
		slog.Warn("snapshot_kept", "seq", seq, "risk_level", st.RiskLevel, "reason", "fetch produced no data")
	}

	notify(listeners, st)
}

// listenersLocked must be called with lock held.
func (s *Store) listenersLocked() []func(State) {
	out := make([]func(State), len(s.listeners))
	copy(out, s.listeners)
	return out
}

func notify(listeners []func(State), st State) {
	for _, fn := range listeners {
		fn(st)
	}
}
