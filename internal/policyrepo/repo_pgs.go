// Package policyrepo manages repository layer of spending policies.
package policyrepo

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

// RepoPGS facilitates policy repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns policy RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

func scanPolicy(row *sql.Row) (domain.SpendingPolicy, error) {
	var (
		p       domain.SpendingPolicy
		blocked pq.StringArray
	)

	err := row.Scan(
		&p.AccountID,
		&p.GuardianID,
		&blocked,
		&p.DailyCap,
		&p.WeeklyCap,
		&p.UpdatedAt,
	)

	p.Blocked = []string(blocked)

	return p, err
}

const getQuery = `
SELECT account_id, guardian_id, blocked, daily_cap, weekly_cap, updated_at
FROM spending_policies
WHERE account_id = $1
`

// GetPolicy returns the spending policy of the account.
func (r *RepoPGS) GetPolicy(ctx context.Context, accountID string) (domain.SpendingPolicy, error) {
	l := zerolog.Ctx(ctx)

	p, err := scanPolicy(r.db.QueryRowContext(ctx, getQuery, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SpendingPolicy{}, domain.ErrPolicyNotFound
		}

		l.Error().Err(err).Send()

		return domain.SpendingPolicy{}, errorspkg.ErrInternal
	}

	return p, nil
}

const upsertQuery = `
INSERT INTO spending_policies (account_id, guardian_id, blocked, daily_cap, weekly_cap, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (account_id) DO UPDATE SET
	guardian_id = EXCLUDED.guardian_id,
	blocked = EXCLUDED.blocked,
	daily_cap = EXCLUDED.daily_cap,
	weekly_cap = EXCLUDED.weekly_cap,
	updated_at = EXCLUDED.updated_at
RETURNING account_id, guardian_id, blocked, daily_cap, weekly_cap, updated_at
`

// UpsertPolicy creates or replaces the spending policy of the account.
func (r *RepoPGS) UpsertPolicy(ctx context.Context, p domain.SpendingPolicy) (domain.SpendingPolicy, error) {
	l := zerolog.Ctx(ctx)

	blocked := p.Blocked
	if blocked == nil {
		blocked = []string{}
	}

	saved, err := scanPolicy(r.db.QueryRowContext(ctx, upsertQuery,
		p.AccountID,
		p.GuardianID,
		pq.Array(blocked),
		p.DailyCap,
		p.WeeklyCap,
	))
	if err != nil {
		l.Error().Err(err).Msgf("UpsertPolicy(ctx, %+v)", p)
		return domain.SpendingPolicy{}, errorspkg.ErrInternal
	}

	return saved, nil
}
