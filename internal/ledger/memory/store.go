// Package memory provides an in-memory ledger store used for tests and
// local demos.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mpetrov/finance-advisor/internal/domain"
)

// Store keeps per-user ledgers in memory. Safe for concurrent use.
type Store struct {
	mu  sync.RWMutex
	txs map[string][]domain.Transaction
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{txs: make(map[string][]domain.Transaction)}
}

// ListTransactions returns a copy of the user's ledger, newest first.
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.txs[userID]
	out := make([]domain.Transaction, len(stored))
	copy(out, stored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredOn.After(out[j].OccurredOn)
	})
	return out, nil
}

// AddTransaction appends a record to the user's ledger.
func (s *Store) AddTransaction(ctx context.Context, userID string, tx domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs[userID] = append(s.txs[userID], tx)
	return nil
}

// Close is a no-op for the memory backend.
func (s *Store) Close() error { return nil }
