package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// session is a live login bound to a user.
type session struct {
	UserID    int64
	ExpiresAt time.Time
}

// SessionStore holds opaque session tokens with a TTL. Tokens are looked
// up on every authenticated request; expired tokens read as absent so the
// middleware can answer with an authoritative 401.
type SessionStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]session
	now      func() time.Time
}

// NewSessionStore creates a session store with the given token lifetime.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[string]session),
		now:      time.Now,
	}
}

// Create issues a new token for the user and returns it with its expiry.
func (s *SessionStore) Create(userID int64) (string, time.Time) {
	token := uuid.NewString()
	expiresAt := s.now().Add(s.ttl)

	s.mu.Lock()
	s.sessions[token] = session{UserID: userID, ExpiresAt: expiresAt}
	s.mu.Unlock()

	return token, expiresAt
}

// Lookup resolves a token to a user id. Expired entries are dropped.
func (s *SessionStore) Lookup(token string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return 0, false
	}
	if s.now().After(sess.ExpiresAt) {
		delete(s.sessions, token)
		return 0, false
	}
	return sess.UserID, true
}

// Delete removes a token, ending its session.
func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
