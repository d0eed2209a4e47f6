// Package pinresetrepo manages repository layer of PIN reset requests.
package pinresetrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/pkg/dbpkg"
	"github.com/go-petr/campus-wallet/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates PIN reset repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewRepoPGS returns PIN reset RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

func scanRequest(row *sql.Row) (domain.ResetRequest, error) {
	var r domain.ResetRequest

	err := row.Scan(
		&r.ID,
		&r.AccountID,
		&r.Role,
		&r.Status,
		&r.CreatedAt,
	)

	return r, err
}

const createQuery = `
INSERT INTO pin_reset_requests (id, account_id, role, status)
VALUES ($1, $2, $3, 'pending')
RETURNING id, account_id, role, status, created_at
`

// CreateResetRequest records a pending PIN reset.
func (r *RepoPGS) CreateResetRequest(ctx context.Context, accountID string, role domain.Role) (domain.ResetRequest, error) {
	l := zerolog.Ctx(ctx)

	req, err := scanRequest(r.db.QueryRowContext(ctx, createQuery, uuid.NewString(), accountID, role))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "pin_reset_requests_pending_idx" {
			return domain.ResetRequest{}, domain.ErrDuplicatePendingRequest
		}

		l.Error().Err(err).Send()

		return domain.ResetRequest{}, errorspkg.ErrInternal
	}

	return req, nil
}

const getQuery = `
SELECT id, account_id, role, status, created_at
FROM pin_reset_requests
WHERE id = $1
`

// GetResetRequest returns the reset request with the given id.
func (r *RepoPGS) GetResetRequest(ctx context.Context, id string) (domain.ResetRequest, error) {
	l := zerolog.Ctx(ctx)

	if _, err := uuid.Parse(id); err != nil {
		return domain.ResetRequest{}, domain.ErrRequestNotFound
	}

	req, err := scanRequest(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ResetRequest{}, domain.ErrRequestNotFound
		}

		l.Error().Err(err).Send()

		return domain.ResetRequest{}, errorspkg.ErrInternal
	}

	return req, nil
}

const completeQuery = `
UPDATE pin_reset_requests
SET status = 'completed'
WHERE id = $1 AND status = 'pending'
RETURNING id, account_id, role, status, created_at
`

const clearPinQuery = `
UPDATE accounts
SET pin_hash = ''
WHERE id = $1
`

// CompleteReset clears the PIN of the target account and completes the pending request
// within a single transaction.
func (r *RepoPGS) CompleteReset(ctx context.Context, id string) (domain.ResetRequest, error) {
	l := zerolog.Ctx(ctx)

	if _, err := uuid.Parse(id); err != nil {
		return domain.ResetRequest{}, domain.ErrRequestNotFound
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.ResetRequest{}, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	req, err := scanRequest(tx.QueryRowContext(ctx, completeQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ResetRequest{}, domain.ErrRequestNotFound
		}

		l.Error().Err(err).Send()

		return domain.ResetRequest{}, errorspkg.ErrInternal
	}

	if _, err := tx.ExecContext(ctx, clearPinQuery, req.AccountID); err != nil {
		l.Error().Err(err).Send()
		return domain.ResetRequest{}, errorspkg.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.ResetRequest{}, errorspkg.ErrInternal
	}

	return req, nil
}
