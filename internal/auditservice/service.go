// Package auditservice records a traceability trail of state-changing operations.
//
// Records are queued and written by a background worker so that a slow or failing
// sink never delays or fails the operation being audited.
package auditservice

import (
	"context"
	"sync"
	"time"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by audit service layer.
type Repo interface {
	InsertAudit(ctx context.Context, rec domain.AuditRecord) error
}

// Service facilitates audit service layer logic.
type Service struct {
	repo   Repo
	logger zerolog.Logger
	now    func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan domain.AuditRecord
	done   chan struct{}
}

// New returns audit service and starts its worker.
func New(repo Repo, bufferSize int, logger zerolog.Logger) *Service {
	if bufferSize < 1 {
		bufferSize = 1
	}

	s := &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		queue:  make(chan domain.AuditRecord, bufferSize),
		done:   make(chan struct{}),
	}

	go s.run()

	return s
}

func (s *Service) run() {
	defer close(s.done)

	ctx := s.logger.WithContext(context.Background())

	for rec := range s.queue {
		if err := s.repo.InsertAudit(ctx, rec); err != nil {
			s.logger.Error().Err(err).Str("kind", rec.Kind).Str("actor_id", rec.ActorID).Msg("audit record dropped")
		}
	}
}

// LogAction queues an audit record. It never blocks and never fails the caller.
func (s *Service) LogAction(ctx context.Context, actorID, actorName, kind string, metadata map[string]any) {
	rec := domain.AuditRecord{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		ActorName: actorName,
		Kind:      kind,
		Metadata:  metadata,
		CreatedAt: s.now(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		zerolog.Ctx(ctx).Warn().Str("kind", kind).Msg("audit service closed, record dropped")
		return
	}

	select {
	case s.queue <- rec:
	default:
		zerolog.Ctx(ctx).Warn().Str("kind", kind).Msg("audit buffer full, record dropped")
	}
}

// Close stops accepting records and waits until the queued ones are written.
func (s *Service) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	<-s.done
}
