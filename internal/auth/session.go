package auth

import (
	"context"
	"sync"
)

// Session holds the signed-in state of one client. Nothing it reports is trusted
// until Init has returned.
type Session struct {
	verifier *Verifier

	mu          sync.RWMutex
	initialized bool
	identity    Identity
}

func NewSession(v *Verifier) *Session {
	return &Session{verifier: v}
}

// Init restores the session from a previously issued token. An empty token leaves
// the session signed out without error.
func (s *Session) Init(ctx context.Context, token string) error {
	var (
		id  Identity
		err error
	)
	if token != "" {
		id, err = s.verifier.Verify(ctx, token)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
	if err != nil {
		s.identity = Identity{}
		return err
	}
	s.identity = id
	return nil
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized && s.identity.Authenticated
}

// User returns the current identity, or false when signed out or not yet initialized.
func (s *Session) User() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized || !s.identity.Authenticated {
		return Identity{}, false
	}
	return s.identity, true
}

// SignIn replaces the identity with the one carried by token. On failure the
// previous state is kept.
func (s *Session) SignIn(ctx context.Context, token string) error {
	id, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
	s.identity = id
	return nil
}

// SignOut clears both the authentication flag and the identity.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = Identity{}
}
