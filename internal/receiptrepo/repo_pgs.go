// Package receiptrepo manages repository layer of receipts.
package receiptrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/pkg/dbpkg"
	"github.com/go-petr/campus-wallet/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates receipt repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns receipt RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const receiptColumns = `id, transaction_id, order_id, account_id, kind, amount, description,
	counterparty_name, line_items, status, buyer_id, seller_id, escrow_account_id, created_at, updated_at`

func scanReceipt(row interface{ Scan(...any) error }) (domain.Receipt, error) {
	var (
		r     domain.Receipt
		items []byte
	)

	err := row.Scan(
		&r.ID,
		&r.TransactionID,
		&r.OrderID,
		&r.AccountID,
		&r.Kind,
		&r.Amount,
		&r.Description,
		&r.CounterpartyName,
		&items,
		&r.Status,
		&r.BuyerID,
		&r.SellerID,
		&r.EscrowAccountID,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return domain.Receipt{}, err
	}

	if len(items) > 0 {
		if err := json.Unmarshal(items, &r.LineItems); err != nil {
			return domain.Receipt{}, err
		}
	}

	return r, nil
}

const createQuery = `
INSERT INTO receipts (
	id, transaction_id, order_id, account_id, kind, amount, description,
	counterparty_name, line_items, status, buyer_id, seller_id, escrow_account_id
)
VALUES
	($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING ` + receiptColumns

// CreateReceipt stores a new receipt.
func (r *RepoPGS) CreateReceipt(ctx context.Context, arg domain.CreateReceiptParams) (domain.Receipt, error) {
	l := zerolog.Ctx(ctx)

	items := arg.LineItems
	if items == nil {
		items = []domain.LineItem{}
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Receipt{}, errorspkg.ErrInternal
	}

	rec, err := scanReceipt(r.db.QueryRowContext(ctx, createQuery,
		uuid.NewString(),
		arg.TransactionID,
		arg.OrderID,
		arg.AccountID,
		arg.Kind,
		arg.Amount,
		arg.Description,
		arg.CounterpartyName,
		itemsJSON,
		arg.Status,
		arg.BuyerID,
		arg.SellerID,
		arg.EscrowAccountID,
	))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "receipts_order_id_key" {
			return domain.Receipt{}, domain.ErrDuplicateOrder
		}

		l.Error().Err(err).Msgf("CreateReceipt(ctx, %+v)", arg)
		return domain.Receipt{}, errorspkg.ErrInternal
	}

	return rec, nil
}

const getQuery = `
SELECT ` + receiptColumns + `
FROM receipts
WHERE id = $1
`

// GetReceipt returns the receipt with the given id.
func (r *RepoPGS) GetReceipt(ctx context.Context, id string) (domain.Receipt, error) {
	l := zerolog.Ctx(ctx)

	if _, err := uuid.Parse(id); err != nil {
		return domain.Receipt{}, domain.ErrReceiptNotFound
	}

	rec, err := scanReceipt(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Receipt{}, domain.ErrReceiptNotFound
		}

		l.Error().Err(err).Send()

		return domain.Receipt{}, errorspkg.ErrInternal
	}

	return rec, nil
}

const listByAccountQuery = `
SELECT ` + receiptColumns + `
FROM receipts
WHERE account_id = $1 OR seller_id = $1
ORDER BY created_at DESC, id DESC
`

// ListReceiptsByAccount returns the receipts addressed to the account or naming it as seller, newest first.
func (r *RepoPGS) ListReceiptsByAccount(ctx context.Context, accountID string) ([]domain.Receipt, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByAccountQuery, accountID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Receipt{}

	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, rec)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const compareAndSetQuery = `
UPDATE receipts
SET status = $3, updated_at = now()
WHERE id = $1 AND status = $2
RETURNING ` + receiptColumns

// CompareAndSetReceiptStatus sets the status only if it currently equals from.
func (r *RepoPGS) CompareAndSetReceiptStatus(ctx context.Context, id string, from, to domain.ReceiptStatus) (domain.Receipt, error) {
	l := zerolog.Ctx(ctx)

	if _, err := uuid.Parse(id); err != nil {
		return domain.Receipt{}, domain.ErrReceiptNotFound
	}

	rec, err := scanReceipt(r.db.QueryRowContext(ctx, compareAndSetQuery, id, from, to))
	if err == nil {
		return rec, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		l.Error().Err(err).Send()
		return domain.Receipt{}, errorspkg.ErrInternal
	}

	if _, err := r.GetReceipt(ctx, id); err != nil {
		return domain.Receipt{}, err
	}

	return domain.Receipt{}, domain.ErrInvalidStateTransition
}
