package memstore

import (
	"context"

	"github.com/go-petr/campus-wallet/internal/domain"
)

// GetPolicy returns the spending policy of the account.
func (s *Store) GetPolicy(_ context.Context, accountID string) (domain.SpendingPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.policies[accountID]
	if !ok {
		return domain.SpendingPolicy{}, domain.ErrPolicyNotFound
	}

	p.Blocked = append([]string(nil), p.Blocked...)

	return p, nil
}

// UpsertPolicy creates or replaces the spending policy of the account.
func (s *Store) UpsertPolicy(_ context.Context, p domain.SpendingPolicy) (domain.SpendingPolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.Blocked = append([]string(nil), p.Blocked...)
	p.UpdatedAt = s.now()
	s.policies[p.AccountID] = p

	return p, nil
}
