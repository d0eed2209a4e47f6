// Package entryrepo manages repository layer of ledger entries.
package entryrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/pkg/dbpkg"
	"github.com/go-petr/campus-wallet/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates entry repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns entry RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const entryColumns = `id, account_id, amount, category, description, status,
	counterparty_id, counterparty_name, reference, created_at`

func scanEntry(row interface{ Scan(...any) error }) (domain.Entry, error) {
	var e domain.Entry

	err := row.Scan(
		&e.ID,
		&e.AccountID,
		&e.Amount,
		&e.Category,
		&e.Description,
		&e.Status,
		&e.CounterpartyID,
		&e.CounterpartyName,
		&e.Reference,
		&e.CreatedAt,
	)

	return e, err
}

const createQuery = `
INSERT INTO entries (
	id, account_id, amount, category, description, status,
	counterparty_id, counterparty_name, reference
)
VALUES
	($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + entryColumns

// CreateEntry appends the entry and then returns it.
func (r *RepoPGS) CreateEntry(ctx context.Context, arg domain.CreateEntryParams) (domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	status := arg.Status
	if status == "" {
		status = domain.EntryCompleted
	}

	row := r.db.QueryRowContext(ctx, createQuery,
		uuid.NewString(),
		arg.AccountID,
		arg.Amount,
		arg.Category,
		arg.Description,
		status,
		arg.CounterpartyID,
		arg.CounterpartyName,
		arg.Reference,
	)

	e, err := scanEntry(row)
	if err != nil {
		l.Error().Err(err).Msgf("CreateEntry(ctx, %+v)", arg)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "entries_account_id_fkey":
				return domain.Entry{}, domain.ErrAccountNotFound
			case "entries_amount_check":
				return domain.Entry{}, domain.ErrInvalidAmount
			}
		}

		return domain.Entry{}, errorspkg.ErrInternal
	}

	return e, nil
}

const getQuery = `
SELECT ` + entryColumns + `
FROM entries
WHERE id = $1
`

// GetEntry returns the entry with the given id.
func (r *RepoPGS) GetEntry(ctx context.Context, id string) (domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	if _, err := uuid.Parse(id); err != nil {
		return domain.Entry{}, domain.ErrEntryNotFound
	}

	e, err := scanEntry(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, domain.ErrEntryNotFound
		}

		l.Error().Err(err).Send()

		return e, errorspkg.ErrInternal
	}

	return e, nil
}

const listByAccountQuery = `
SELECT ` + entryColumns + `
FROM entries
WHERE account_id = $1
ORDER BY created_at DESC, id DESC
`

// ListEntriesByAccount returns the account entries, newest first.
func (r *RepoPGS) ListEntriesByAccount(ctx context.Context, accountID string) ([]domain.Entry, error) {
	return r.list(ctx, listByAccountQuery, accountID)
}

const listByReferenceQuery = `
SELECT ` + entryColumns + `
FROM entries
WHERE reference = $1
ORDER BY created_at, id
`

// ListEntriesByReference returns the entries linked to an order or fee reference.
func (r *RepoPGS) ListEntriesByReference(ctx context.Context, reference string) ([]domain.Entry, error) {
	return r.list(ctx, listByReferenceQuery, reference)
}

func (r *RepoPGS) list(ctx context.Context, query string, args ...any) ([]domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Entry{}

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, e)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const updateStatusQuery = `
UPDATE entries
SET status = $2
WHERE id = $1 AND status = 'pending'
RETURNING ` + entryColumns

// UpdateEntryStatus moves a pending entry to the given status.
func (r *RepoPGS) UpdateEntryStatus(ctx context.Context, id string, status domain.EntryStatus) (domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	e, err := scanEntry(r.db.QueryRowContext(ctx, updateStatusQuery, id, status))
	if err == nil {
		return e, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		l.Error().Err(err).Send()
		return domain.Entry{}, errorspkg.ErrInternal
	}

	// Nothing updated: either the entry is missing or it already settled.
	if _, err := r.GetEntry(ctx, id); err != nil {
		return domain.Entry{}, err
	}

	return domain.Entry{}, domain.ErrInvalidStateTransition
}

const sumDebitsQuery = `
SELECT COALESCE(SUM(-amount), 0)
FROM entries
WHERE account_id = $1
	AND category = $2
	AND amount < 0
	AND status <> 'cancelled'
	AND created_at >= $3
`

// SumDebits returns the absolute total of non-cancelled debits of the category since the given time.
func (r *RepoPGS) SumDebits(ctx context.Context, accountID string, category domain.Category, since time.Time) (int64, error) {
	l := zerolog.Ctx(ctx)

	var total int64
	if err := r.db.QueryRowContext(ctx, sumDebitsQuery, accountID, category, since).Scan(&total); err != nil {
		l.Error().Err(err).Send()
		return 0, errorspkg.ErrInternal
	}

	return total, nil
}
