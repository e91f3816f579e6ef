// Package sync implements the alert synchronization engine: a store that
// holds the latest alert set, a lifecycle scheduler that governs when
// refreshes run, and a dispatcher that surfaces new alerts to the
// notification boundary.
package sync

import (
	"context"
	stdsync "sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/alert"
	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/client"
)

// Fetcher is the boundary to the alert API. *client.APIClient satisfies it.
type Fetcher interface {
	FetchAlerts(ctx context.Context) ([]alert.RawAlert, error)
}

// UpdateHandler receives the full alert set after each successful refresh.
type UpdateHandler interface {
	HandleUpdate(alerts []alert.RawAlert)
}

// Store holds the latest alert set, derived per-species counts, and the
// session-active flag. Refresh is the single mutation path for the alert
// set; readers get copies and never observe partial updates.
//
// Refresh is not reentrant-safe. The scheduler guarantees at most one
// in-flight refresh via its single-flight timer.
type Store struct {
	fetcher Fetcher
	log     *logrus.Logger

	mu            stdsync.RWMutex
	alerts        []alert.RawAlert
	counts        map[string]int
	authenticated bool
	epoch         uint64

	onSessionExpired func()
	onUpdate         UpdateHandler
}

// NewStore creates an empty store backed by the given fetcher.
func NewStore(fetcher Fetcher, log *logrus.Logger) *Store {
	return &Store{
		fetcher: fetcher,
		log:     log,
		counts:  map[string]int{},
	}
}

// SetSessionExpiredHook installs the callback invoked synchronously when
// the server authoritatively rejects the session. The scheduler registers
// its deauthenticated event here so a stale poll can never outlive the
// session.
func (s *Store) SetSessionExpiredHook(fn func()) {
	s.onSessionExpired = fn
}

// SetUpdateHandler installs the consumer of successful refreshes,
// typically the dispatcher.
func (s *Store) SetUpdateHandler(h UpdateHandler) {
	s.onUpdate = h
}

// StartSession marks the session active. Called after a session token has
// been obtained, before the scheduler is told about authentication.
func (s *Store) StartSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = true
	s.epoch++
}

// EndSession clears the alert set and marks the session inactive. Used on
// explicit logout; the server-driven path goes through Refresh.
func (s *Store) EndSession() {
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()
}

// Authenticated reports whether the store believes the session is active.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Snapshot returns a copy of the current alert set.
func (s *Store) Snapshot() []alert.RawAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]alert.RawAlert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// SpeciesCounts returns a copy of the per-species counts over the full
// unfiltered alert set. Counts are independent of any filter criteria.
func (s *Store) SpeciesCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

// Refresh fetches the complete alert set and replaces the stored one
// atomically. On transport failure the previous set is retained unchanged
// and a *SyncError of kind KindNetwork (or KindMalformed) is returned; the
// store never retries on its own. On an authoritative un-authenticated
// response the set is cleared, the session flag drops, and the session
// expired hook fires before Refresh returns.
//
// A result that resolves after the context is cancelled or after the
// session epoch has moved on is discarded: stale data can never overwrite
// a cleared or newer set.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.RLock()
	startEpoch := s.epoch
	s.mu.RUnlock()

	fetched, err := s.fetcher.FetchAlerts(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// Scheduler left Active mid-flight; nothing to report.
			s.log.Debug("discarding refresh interrupted by shutdown")
			return nil
		}
		return s.classifyFetchError(err)
	}

	if ctx.Err() != nil {
		s.log.Debug("discarding stale refresh result")
		return nil
	}

	s.mu.Lock()
	if s.epoch != startEpoch || !s.authenticated {
		s.mu.Unlock()
		s.log.Debug("discarding refresh result from a previous session")
		return nil
	}

	replaced := make([]alert.RawAlert, len(fetched))
	copy(replaced, fetched)

	counts := make(map[string]int, len(replaced))
	for _, a := range replaced {
		counts[a.Species]++
	}

	s.alerts = replaced
	s.counts = counts
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"alerts":  len(replaced),
		"species": len(counts),
	}).Debug("alert set replaced")

	if s.onUpdate != nil {
		s.onUpdate.HandleUpdate(replaced)
	}
	return nil
}

// classifyFetchError maps a fetch failure onto a SyncError kind and
// applies the session-expired transition when the server de-authed us.
func (s *Store) classifyFetchError(err error) error {
	if errors.Is(err, client.ErrUnauthenticated) {
		s.mu.Lock()
		s.clearLocked()
		s.mu.Unlock()

		s.log.Warn("session expired, halting alert polling")
		if s.onSessionExpired != nil {
			s.onSessionExpired()
		}
		return &SyncError{Kind: KindSessionExpired, Err: err}
	}

	if errors.Is(err, client.ErrMalformedResponse) {
		return &SyncError{Kind: KindMalformed, Err: err}
	}
	return &SyncError{Kind: KindNetwork, Err: err}
}

// clearLocked empties the alert set and deactivates the session. Callers
// must hold the write lock. Bumping the epoch makes any in-flight refresh
// result stale.
func (s *Store) clearLocked() {
	s.alerts = nil
	s.counts = map[string]int{}
	s.authenticated = false
	s.epoch++
}
