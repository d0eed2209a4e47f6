package memstore

import (
	"context"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/google/uuid"
)

// CreateResetRequest records a pending PIN reset, rejecting a second pending request for the account.
func (s *Store) CreateResetRequest(_ context.Context, accountID string, role domain.Role) (domain.ResetRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.resets {
		if r.AccountID == accountID && r.Status == domain.ResetPending {
			return domain.ResetRequest{}, domain.ErrDuplicatePendingRequest
		}
	}

	r := domain.ResetRequest{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Role:      role,
		Status:    domain.ResetPending,
		CreatedAt: s.now(),
	}
	s.resets[r.ID] = r

	return r, nil
}

// GetResetRequest returns the reset request with the given id.
func (s *Store) GetResetRequest(_ context.Context, id string) (domain.ResetRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.resets[id]
	if !ok {
		return domain.ResetRequest{}, domain.ErrRequestNotFound
	}

	return r, nil
}

// CompleteReset clears the PIN of the target account and completes the pending request.
func (s *Store) CompleteReset(ctx context.Context, id string) (domain.ResetRequest, error) {
	r, err := s.GetResetRequest(ctx, id)
	if err != nil {
		return r, err
	}

	unlock := s.lockAccounts([]string{r.AccountID})
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	r = s.resets[id]
	if r.Status != domain.ResetPending {
		return domain.ResetRequest{}, domain.ErrRequestNotFound
	}

	if a, ok := s.accounts[r.AccountID]; ok {
		a.PinHash = ""
		s.accounts[r.AccountID] = a
	}

	r.Status = domain.ResetCompleted
	s.resets[id] = r

	return r, nil
}
