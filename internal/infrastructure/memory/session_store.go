package memory

import (
	"context"
	"sync"
)

// SessionStore maps bearer tokens to usernames. Tokens carry no expiry.
type SessionStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{tokens: make(map[string]string)}
}

func (s *SessionStore) Put(_ context.Context, token, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = username
}

func (s *SessionStore) Resolve(_ context.Context, token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	username, ok := s.tokens[token]
	return username, ok
}

func (s *SessionStore) Delete(_ context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}
