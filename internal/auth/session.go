package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Session is a logged-in browser. Token is the capability the cookie carries.
type Session struct {
	Token     string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore keeps sessions in memory. Sessions do not survive a restart.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a store issuing sessions that live for ttl
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL returns the lifetime of new sessions
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create issues a new session for username
func (s *SessionStore) Create(_ context.Context, username string) (Session, error) {
	now := s.now()
	session := Session{
		Token:     uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	return session, nil
}

// Get returns the live session for token. Expired sessions are removed.
func (s *SessionStore) Get(_ context.Context, token string) (Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return Session{}, ErrSessionNotFound
	}

	if session.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return Session{}, ErrSessionExpired
	}
	return session, nil
}

// Revoke removes the session for token. Unknown tokens are ignored.
func (s *SessionStore) Revoke(_ context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Cleanup drops expired sessions and returns how many were removed
func (s *SessionStore) Cleanup() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired or not
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// RunJanitor calls Cleanup every interval until ctx is done
func (s *SessionStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}
