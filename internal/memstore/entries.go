package memstore

import (
	"context"

	"github.com/go-petr/campus-wallet/internal/domain"
)

// ListEntriesByAccount returns the account entries, newest first.
func (s *Store) ListEntriesByAccount(_ context.Context, accountID string) ([]domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := []domain.Entry{}

	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].AccountID == accountID {
			items = append(items, s.entries[i])
		}
	}

	return items, nil
}

// ListEntriesByReference returns the entries linked to an order or fee reference in append order.
func (s *Store) ListEntriesByReference(_ context.Context, reference string) ([]domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := []domain.Entry{}

	for _, e := range s.entries {
		if e.Reference == reference {
			items = append(items, e)
		}
	}

	return items, nil
}

// GetEntry returns the entry with the given id.
func (s *Store) GetEntry(_ context.Context, id string) (domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.entryIdx[id]
	if !ok {
		return domain.Entry{}, domain.ErrEntryNotFound
	}

	return s.entries[i], nil
}

// UpdateEntryStatus moves a pending entry to the given status.
func (s *Store) UpdateEntryStatus(_ context.Context, id string, status domain.EntryStatus) (domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.entryIdx[id]
	if !ok {
		return domain.Entry{}, domain.ErrEntryNotFound
	}

	if s.entries[i].Status != domain.EntryPending {
		return domain.Entry{}, domain.ErrInvalidStateTransition
	}

	s.entries[i].Status = status

	return s.entries[i], nil
}

// Entries returns a copy of the whole ledger in append order.
func (s *Store) Entries() []domain.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.Entry(nil), s.entries...)
}
