// Package profilerepo manages repository layer of directory profiles.
package profilerepo

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

// RepoPGS facilitates profile repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns profile RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const getQuery = `
SELECT id, name, role
FROM profiles
WHERE id = $1
`

// GetProfile returns the directory identity of the account.
func (r *RepoPGS) GetProfile(ctx context.Context, id string) (domain.Identity, error) {
	l := zerolog.Ctx(ctx)

	var p domain.Identity

	err := r.db.QueryRowContext(ctx, getQuery, id).Scan(&p.ID, &p.Name, &p.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Identity{}, domain.ErrDirectoryLookupFailed
		}

		l.Error().Err(err).Send()

		return domain.Identity{}, errorspkg.ErrInternal
	}

	return p, nil
}

const createQuery = `
INSERT INTO profiles (id, name, role)
VALUES ($1, $2, $3)
RETURNING id, name, role
`

// CreateProfile registers a directory identity.
func (r *RepoPGS) CreateProfile(ctx context.Context, p domain.Identity) (domain.Identity, error) {
	l := zerolog.Ctx(ctx)

	var created domain.Identity

	err := r.db.QueryRowContext(ctx, createQuery, p.ID, p.Name, p.Role).Scan(&created.ID, &created.Name, &created.Role)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "profiles_pkey" {
			return domain.Identity{}, domain.ErrProfileAlreadyExists
		}

		l.Error().Err(err).Send()

		return domain.Identity{}, errorspkg.ErrInternal
	}

	return created, nil
}
