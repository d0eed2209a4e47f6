// Package auditrepo manages repository layer of the audit log.
package auditrepo

import (
	"context"
	"encoding/json"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/pkg/dbpkg"
	"github.com/go-petr/campus-wallet/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates audit repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns audit RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const insertQuery = `
INSERT INTO audit_log (id, actor_id, actor_name, kind, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

// InsertAudit appends an audit record.
func (r *RepoPGS) InsertAudit(ctx context.Context, rec domain.AuditRecord) error {
	l := zerolog.Ctx(ctx)

	meta := rec.Metadata
	if meta == nil {
		meta = map[string]any{}
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	_, err = r.db.ExecContext(ctx, insertQuery, rec.ID, rec.ActorID, rec.ActorName, rec.Kind, metaJSON, rec.CreatedAt)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}
