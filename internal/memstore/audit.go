package memstore

import (
	"context"

	"github.com/go-petr/campus-wallet/internal/domain"
)

// InsertAudit appends an audit record.
func (s *Store) InsertAudit(_ context.Context, rec domain.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audit = append(s.audit, rec)

	return nil
}

// AuditRecords returns a copy of the audit trail.
func (s *Store) AuditRecords() []domain.AuditRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.AuditRecord(nil), s.audit...)
}
