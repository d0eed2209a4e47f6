// Package ledgerrepo runs balance-changing units of work inside PostgreSQL transactions.
package ledgerrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-petr/campus-wallet/internal/accountrepo"
	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/internal/entryrepo"
	"github.com/go-petr/campus-wallet/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates ledger repository layer logic.
type RepoPGS struct {
	conn *sql.DB
}

// NewRepoPGS returns ledger RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{conn: db}
}

// Atomic runs fn inside a single database transaction.
//
// The existing rows of accountIDs are locked with SELECT ... FOR UPDATE in ascending id
// order before fn runs. The transaction commits only if fn returns nil.
func (r *RepoPGS) Atomic(ctx context.Context, accountIDs []string, fn func(tx domain.LedgerTx) error) error {
	l := zerolog.Ctx(ctx)

	sqlTx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	defer func() {
		if err := sqlTx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	ids := domain.LockOrder(accountIDs)

	tx := &ledgerTx{
		accounts: accountrepo.NewRepoPGS(sqlTx),
		entries:  entryrepo.NewRepoPGS(sqlTx),
		locked:   make(map[string]struct{}, len(ids)),
	}

	for _, id := range ids {
		tx.locked[id] = struct{}{}
	}

	if err := tx.accounts.LockAccounts(ctx, ids); err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

// ledgerTx binds account and entry repos to one sql transaction.
type ledgerTx struct {
	accounts *accountrepo.RepoPGS
	entries  *entryrepo.RepoPGS
	locked   map[string]struct{}
}

func (tx *ledgerTx) checkLocked(id string) error {
	if _, ok := tx.locked[id]; !ok {
		return domain.ErrAccountNotLocked
	}

	return nil
}

func (tx *ledgerTx) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	if err := tx.checkLocked(id); err != nil {
		return domain.Account{}, err
	}

	return tx.accounts.GetAccount(ctx, id)
}

func (tx *ledgerTx) GetOrCreateAccount(ctx context.Context, id string) (domain.Account, error) {
	if err := tx.checkLocked(id); err != nil {
		return domain.Account{}, err
	}

	return tx.accounts.GetOrCreateAccount(ctx, id)
}

func (tx *ledgerTx) Credit(ctx context.Context, id string, amount int64) (domain.Account, error) {
	if amount <= 0 {
		return domain.Account{}, domain.ErrInvalidAmount
	}

	if err := tx.checkLocked(id); err != nil {
		return domain.Account{}, err
	}

	return tx.accounts.AddBalance(ctx, id, amount)
}

func (tx *ledgerTx) Debit(ctx context.Context, id string, amount int64) (domain.Account, error) {
	if amount <= 0 {
		return domain.Account{}, domain.ErrInvalidAmount
	}

	if err := tx.checkLocked(id); err != nil {
		return domain.Account{}, err
	}

	return tx.accounts.AddBalance(ctx, id, -amount)
}

func (tx *ledgerTx) CreateEntry(ctx context.Context, arg domain.CreateEntryParams) (domain.Entry, error) {
	if arg.Amount == 0 {
		return domain.Entry{}, domain.ErrInvalidAmount
	}

	if err := tx.checkLocked(arg.AccountID); err != nil {
		return domain.Entry{}, err
	}

	return tx.entries.CreateEntry(ctx, arg)
}

func (tx *ledgerTx) ListEntriesByReference(ctx context.Context, reference string) ([]domain.Entry, error) {
	return tx.entries.ListEntriesByReference(ctx, reference)
}

func (tx *ledgerTx) SumDebits(ctx context.Context, accountID string, category domain.Category, since time.Time) (int64, error) {
	if err := tx.checkLocked(accountID); err != nil {
		return 0, err
	}

	return tx.entries.SumDebits(ctx, accountID, category, since)
}
