// Package memory provides the in-process store implementations backing the
// core services. Each store guards its entity group with its own mutex, so
// read-modify-write sequences on one group serialize without cross-group
// coupling. Nothing here survives a process restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/schoolworks/gradebook/internal/core/domain"
)

// AccountStore holds login accounts keyed by username.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]*domain.Account)}
}

func (s *AccountStore) Create(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.Username]; exists {
		return fmt.Errorf("account %q already exists", account.Username)
	}
	clone := *account
	s.accounts[account.Username] = &clone
	return nil
}

// Find returns a copy of the account so callers never observe concurrent
// mutation.
func (s *AccountStore) Find(_ context.Context, username string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *account
	return &clone, nil
}

// Update runs mutate on the live account under the store lock, making
// increment-then-check sequences atomic.
func (s *AccountStore) Update(_ context.Context, username string, mutate func(*domain.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[username]
	if !ok {
		return domain.ErrNotFound
	}
	mutate(account)
	return nil
}
