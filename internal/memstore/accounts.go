package memstore

import (
	"context"

	"github.com/go-petr/campus-wallet/internal/domain"
)

// GetAccount returns the committed account with the given id.
func (s *Store) GetAccount(_ context.Context, id string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

// GetOrCreateAccount returns the account, creating it with zero balance if needed.
func (s *Store) GetOrCreateAccount(ctx context.Context, id string) (domain.Account, error) {
	var a domain.Account

	err := s.Atomic(ctx, []string{id}, func(tx domain.LedgerTx) error {
		var err error
		a, err = tx.GetOrCreateAccount(ctx, id)

		return err
	})

	return a, err
}

// EnsureAccount creates the account if needed and sets its overdraft flag.
func (s *Store) EnsureAccount(ctx context.Context, id string, allowOverdraft bool) (domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return domain.Account{}, err
	}

	unlock := s.lockAccounts([]string{id})
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		a = domain.Account{ID: id, CreatedAt: s.now()}
	}

	a.AllowOverdraft = allowOverdraft
	s.accounts[id] = a

	return a, nil
}

// SetPinHash stores the hashed PIN of an existing account.
func (s *Store) SetPinHash(ctx context.Context, id, pinHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	unlock := s.lockAccounts([]string{id})
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}

	a.PinHash = pinHash
	s.accounts[id] = a

	return nil
}

// Accounts returns a snapshot of every committed account.
func (s *Store) Accounts() []domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		items = append(items, a)
	}

	return items
}
