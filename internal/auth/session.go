package auth

import (
	"sync"
	"time"
)

// Session answers whether the user is signed in. It is evaluated on every
// call, so expiry and logout take effect without rebuilding consumers.
type Session struct {
	mu    sync.RWMutex
	creds *Credentials
	now   func() time.Time
}

// NewSession creates a Session over creds. A nil creds means signed out.
// A nil now defaults to time.Now.
func NewSession(creds *Credentials, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{creds: creds, now: now}
}

// Authenticated requires credentials that have not expired and carry a token.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil || s.creds.Expired(s.now()) {
		return false
	}
	return s.creds.Token != ""
}

// Token returns the current token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return ""
	}
	return s.creds.Token
}

// Set replaces the credentials. Pass nil to sign out.
func (s *Session) Set(creds *Credentials) {
	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
}

// Static is an authenticator with a fixed answer, used for the local gateway.
type Static bool

func (s Static) Authenticated() bool { return bool(s) }
