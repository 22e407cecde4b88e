package memory

import (
	"context"
	"sync"

	"github.com/schoolworks/gradebook/internal/core/domain"
)

// AuditStore is an append-only, insertion-ordered audit log.
type AuditStore struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
}

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) Record(_ context.Context, entry domain.AuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

// List returns a snapshot copy preserving insertion order.
func (s *AuditStore) List(_ context.Context) []domain.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AuditEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
