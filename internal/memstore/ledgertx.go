package memstore

import (
	"context"
	"time"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/google/uuid"
)

// ledgerTx stages account and entry writes for one unit of work.
type ledgerTx struct {
	store    *Store
	locked   map[string]struct{}
	accounts map[string]domain.Account
	entries  []domain.Entry
}

func newLedgerTx(s *Store, ids []string) *ledgerTx {
	locked := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		locked[id] = struct{}{}
	}

	return &ledgerTx{
		store:    s,
		locked:   locked,
		accounts: make(map[string]domain.Account),
	}
}

func (tx *ledgerTx) checkLocked(id string) error {
	if _, ok := tx.locked[id]; !ok {
		return domain.ErrAccountNotLocked
	}

	return nil
}

func (tx *ledgerTx) account(id string) (domain.Account, bool) {
	if a, ok := tx.accounts[id]; ok {
		return a, true
	}

	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()

	a, ok := tx.store.accounts[id]

	return a, ok
}

// GetAccount returns the staged or committed account.
func (tx *ledgerTx) GetAccount(_ context.Context, id string) (domain.Account, error) {
	if err := tx.checkLocked(id); err != nil {
		return domain.Account{}, err
	}

	a, ok := tx.account(id)
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

// GetOrCreateAccount returns the account, staging a zero balance account if it does not exist.
func (tx *ledgerTx) GetOrCreateAccount(_ context.Context, id string) (domain.Account, error) {
	if err := tx.checkLocked(id); err != nil {
		return domain.Account{}, err
	}

	a, ok := tx.account(id)
	if !ok {
		a = domain.Account{ID: id, CreatedAt: tx.store.now()}
		tx.accounts[id] = a
	}

	return a, nil
}

// Credit stages a balance increase.
func (tx *ledgerTx) Credit(ctx context.Context, id string, amount int64) (domain.Account, error) {
	if amount <= 0 {
		return domain.Account{}, domain.ErrInvalidAmount
	}

	a, err := tx.GetAccount(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	a.Balance += amount
	tx.accounts[id] = a

	return a, nil
}

// Debit stages a balance decrease, refusing to go below zero unless the account allows overdraft.
func (tx *ledgerTx) Debit(ctx context.Context, id string, amount int64) (domain.Account, error) {
	if amount <= 0 {
		return domain.Account{}, domain.ErrInvalidAmount
	}

	a, err := tx.GetAccount(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	if a.Balance < amount && !a.AllowOverdraft {
		return domain.Account{}, domain.ErrInsufficientFunds
	}

	a.Balance -= amount
	tx.accounts[id] = a

	return a, nil
}

// CreateEntry stages an entry with a fresh id and timestamp.
func (tx *ledgerTx) CreateEntry(_ context.Context, arg domain.CreateEntryParams) (domain.Entry, error) {
	if err := tx.checkLocked(arg.AccountID); err != nil {
		return domain.Entry{}, err
	}

	if arg.Amount == 0 {
		return domain.Entry{}, domain.ErrInvalidAmount
	}

	status := arg.Status
	if status == "" {
		status = domain.EntryCompleted
	}

	e := domain.Entry{
		ID:               uuid.NewString(),
		AccountID:        arg.AccountID,
		Amount:           arg.Amount,
		Category:         arg.Category,
		Description:      arg.Description,
		Status:           status,
		CounterpartyID:   arg.CounterpartyID,
		CounterpartyName: arg.CounterpartyName,
		Reference:        arg.Reference,
		CreatedAt:        tx.store.now(),
	}

	tx.entries = append(tx.entries, e)

	return e, nil
}

// ListEntriesByReference returns committed entries followed by staged ones.
func (tx *ledgerTx) ListEntriesByReference(ctx context.Context, reference string) ([]domain.Entry, error) {
	items, err := tx.store.ListEntriesByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	for _, e := range tx.entries {
		if e.Reference == reference {
			items = append(items, e)
		}
	}

	return items, nil
}

// SumDebits totals committed and staged debits.
func (tx *ledgerTx) SumDebits(_ context.Context, accountID string, category domain.Category, since time.Time) (int64, error) {
	if err := tx.checkLocked(accountID); err != nil {
		return 0, err
	}

	tx.store.mu.RLock()
	total := sumDebits(tx.store.entries, accountID, category, since)
	tx.store.mu.RUnlock()

	return total + sumDebits(tx.entries, accountID, category, since), nil
}

func sumDebits(entries []domain.Entry, accountID string, category domain.Category, since time.Time) int64 {
	var total int64

	for _, e := range entries {
		if e.AccountID != accountID || e.Category != category || !e.IsDebit() {
			continue
		}

		if e.Status == domain.EntryCancelled || e.CreatedAt.Before(since) {
			continue
		}

		total -= e.Amount
	}

	return total
}
