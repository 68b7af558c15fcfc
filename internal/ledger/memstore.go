package ledger

import (
	"context"
	"sync"

	"github.com/coindaily/entitlements/internal/models"
)

// MemStore is an in-memory Store. A single mutex serializes Apply, making the
// balance check and mutation one critical section.
type MemStore struct {
	mu       sync.Mutex
	balances map[string]int64
	entries  map[string][]models.LedgerEntry
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		balances: make(map[string]int64),
		entries:  make(map[string][]models.LedgerEntry),
	}
}

// Apply atomically applies the entry's delta and appends the entry.
func (s *MemStore) Apply(ctx context.Context, entry *models.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.balances[entry.UserID]
	if entry.Delta < 0 && balance+entry.Delta < 0 {
		return ErrInsufficientBalance
	}

	s.balances[entry.UserID] = balance + entry.Delta
	s.entries[entry.UserID] = append(s.entries[entry.UserID], *entry)
	return nil
}

// Balance returns the user's current balance. Unknown users start at zero.
func (s *MemStore) Balance(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[userID], nil
}

// Entries returns the user's ledger history, newest first.
func (s *MemStore) Entries(ctx context.Context, userID string, limit, offset int) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.entries[userID]
	result := make([]models.LedgerEntry, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		result = append(result, all[i])
	}

	if offset >= len(result) {
		return []models.LedgerEntry{}, nil
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}
