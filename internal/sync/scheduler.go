package sync

import (
	"context"
	"errors"
	stdsync "sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultPollInterval is the fixed refresh period while the scheduler is
// active.
const DefaultPollInterval = 30 * time.Second

// Refresher is the store boundary the scheduler drives. *Store satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// State is the scheduler's lifecycle state.
type State int

const (
	// StateIdle means no polling: the session is unauthenticated, the
	// page is hidden, or both.
	StateIdle State = iota

	// StateActive means the poll timer is armed and refreshes run.
	StateActive
)

// String returns the state's name for logs.
func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "idle"
}

// Scheduler starts and stops periodic refreshes based on two independent
// signals: authentication state and page visibility. The poll timer is
// armed exactly when both are true; either flag going false tears the
// timer down within the same event-handling step.
//
// At most one refresh is in flight at a time. A tick that lands during an
// in-flight refresh is skipped rather than queued, and a refresh that
// resolves after the scheduler has left Active has its result discarded.
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	newTimer  TimerFactory
	log       *logrus.Logger

	mu            stdsync.Mutex
	authenticated bool
	pageVisible   bool
	timer         Timer
	activeCtx     context.Context
	cancel        context.CancelFunc
	inFlight      bool
	refreshWG     stdsync.WaitGroup
}

// NewScheduler creates an idle scheduler driving the given refresher.
func NewScheduler(refresher Refresher, interval time.Duration, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		refresher: refresher,
		interval:  interval,
		newTimer:  NewTickerTimer,
		log:       log,
	}
}

// SetTimerFactory replaces the timer implementation (useful for testing).
func (s *Scheduler) SetTimerFactory(factory TimerFactory) {
	s.newTimer = factory
}

// HandleAuthenticated records that a valid session exists.
func (s *Scheduler) HandleAuthenticated() {
	s.handleEvent(func() { s.authenticated = true })
}

// HandleDeauthenticated records session loss. If a refresh is in flight
// its result will be discarded.
func (s *Scheduler) HandleDeauthenticated() {
	s.handleEvent(func() { s.authenticated = false })
}

// HandlePageShown records that the page became visible.
func (s *Scheduler) HandlePageShown() {
	s.handleEvent(func() { s.pageVisible = true })
}

// HandlePageHidden records that the page went to the background.
func (s *Scheduler) HandlePageHidden() {
	s.handleEvent(func() { s.pageVisible = false })
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		return StateActive
	}
	return StateIdle
}

// TimerArmed reports whether the poll timer is currently armed. Invariant:
// armed iff authenticated && pageVisible.
func (s *Scheduler) TimerArmed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Wait blocks until any in-flight refresh has resolved. Intended for
// shutdown and tests.
func (s *Scheduler) Wait() {
	s.refreshWG.Wait()
}

// handleEvent applies a flag mutation and re-evaluates the state machine
// in the same step.
func (s *Scheduler) handleEvent(mutate func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate()
	s.evaluateLocked()
}

// evaluateLocked arms or cancels the timer so that it tracks both flags.
// Callers must hold the lock.
func (s *Scheduler) evaluateLocked() {
	want := s.authenticated && s.pageVisible
	armed := s.timer != nil

	switch {
	case want && !armed:
		ctx, cancel := context.WithCancel(context.Background())
		s.activeCtx = ctx
		s.cancel = cancel
		s.timer = s.newTimer(s.interval, func() { s.tick(ctx) })
		s.log.WithField("interval", s.interval).Info("alert polling started")

		// Entering Active performs one immediate refresh.
		if !s.inFlight {
			s.inFlight = true
			s.refreshWG.Add(1)
			go s.runRefresh(ctx)
		}

	case !want && armed:
		s.timer.Stop()
		s.timer = nil
		s.cancel()
		s.activeCtx = nil
		s.cancel = nil
		s.log.WithFields(logrus.Fields{
			"authenticated": s.authenticated,
			"pageVisible":   s.pageVisible,
		}).Info("alert polling stopped")
	}
}

// tick runs one scheduled refresh. A tick from a torn-down activation is
// ignored, and a tick during an in-flight refresh is skipped.
func (s *Scheduler) tick(ctx context.Context) {
	s.mu.Lock()
	if s.activeCtx != ctx {
		s.mu.Unlock()
		return
	}
	if s.inFlight {
		s.log.Debug("skipping poll tick, previous refresh still in flight")
		s.mu.Unlock()
		return
	}
	s.inFlight = true
	s.refreshWG.Add(1)
	s.mu.Unlock()

	s.runRefresh(ctx)
}

// runRefresh executes one refresh cycle and records its outcome.
func (s *Scheduler) runRefresh(ctx context.Context) {
	defer s.refreshWG.Done()
	err := s.refresher.Refresh(ctx)

	s.mu.Lock()
	s.inFlight = false
	stale := s.activeCtx != ctx
	s.mu.Unlock()

	if err == nil || stale {
		return
	}

	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		s.log.WithFields(logrus.Fields{
			"kind":  syncErr.Kind.String(),
			"error": syncErr.Err,
		}).Warn("refresh cycle failed")
		return
	}
	s.log.WithError(err).Warn("refresh cycle failed")
}
