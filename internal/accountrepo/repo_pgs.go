// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/pkg/dbpkg"
	"github.com/go-petr/campus-wallet/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Balance,
		&a.AllowOverdraft,
		&a.PinHash,
		&a.CreatedAt,
	)

	return a, err
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE id = $2
RETURNING id, balance, allow_overdraft, pin_hash, created_at
`

// AddBalance changes the account's balance by delta and returns the changed account.
func (r *RepoPGS) AddBalance(ctx context.Context, id string, delta int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, addBalanceQuery, delta, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, domain.ErrAccountNotFound
		}

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "accounts_balance_check" {
			return domain.Account{}, domain.ErrInsufficientFunds
		}

		l.Error().Err(err).Send()

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

const getQuery = `
SELECT
	id, balance, allow_overdraft, pin_hash, created_at
FROM accounts
WHERE id = $1
`

// GetAccount returns the account with the given id.
func (r *RepoPGS) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const createIfMissingQuery = `
INSERT INTO accounts (id)
VALUES ($1)
ON CONFLICT (id) DO NOTHING
`

// GetOrCreateAccount returns the account, creating it with zero balance if it does not exist.
func (r *RepoPGS) GetOrCreateAccount(ctx context.Context, id string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if _, err := r.db.ExecContext(ctx, createIfMissingQuery, id); err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, errorspkg.ErrInternal
	}

	return r.GetAccount(ctx, id)
}

const ensureQuery = `
INSERT INTO accounts (id, allow_overdraft)
VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET allow_overdraft = EXCLUDED.allow_overdraft
RETURNING id, balance, allow_overdraft, pin_hash, created_at
`

// EnsureAccount creates the account if needed and sets its overdraft flag.
func (r *RepoPGS) EnsureAccount(ctx context.Context, id string, allowOverdraft bool) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, ensureQuery, id, allowOverdraft))
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

const setPinHashQuery = `
UPDATE accounts
SET pin_hash = $1
WHERE id = $2
`

// SetPinHash stores the hashed PIN of an existing account.
func (r *RepoPGS) SetPinHash(ctx context.Context, id, pinHash string) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, setPinHashQuery, pinHash, id)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

const lockQuery = `
SELECT id
FROM accounts
WHERE id = ANY($1)
ORDER BY id
FOR UPDATE
`

// LockAccounts takes row locks on the existing accounts among ids in ascending id order.
func (r *RepoPGS) LockAccounts(ctx context.Context, ids []string) error {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, lockQuery, pq.Array(ids))
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			l.Error().Err(err).Send()
			return errorspkg.ErrInternal
		}
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}
