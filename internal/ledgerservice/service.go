// Package ledgerservice exposes ledger queries and the pending entry settlement transitions.
package ledgerservice

import (
	"context"
	"errors"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by ledger service layer.
type Repo interface {
	ListEntriesByAccount(ctx context.Context, accountID string) ([]domain.Entry, error)
	ListEntriesByReference(ctx context.Context, reference string) ([]domain.Entry, error)
	GetEntry(ctx context.Context, id string) (domain.Entry, error)
	UpdateEntryStatus(ctx context.Context, id string, status domain.EntryStatus) (domain.Entry, error)
}

// Directory resolves the acting identity.
type Directory interface {
	Resolve(ctx context.Context, id string) (domain.Identity, error)
}

// Auditor records state-changing operations.
type Auditor interface {
	LogAction(ctx context.Context, actorID, actorName, kind string, metadata map[string]any)
}

// Service facilitates ledger service layer logic.
type Service struct {
	repo      Repo
	directory Directory
	audit     Auditor
}

// New returns ledger service.
func New(repo Repo, dir Directory, audit Auditor) *Service {
	return &Service{repo: repo, directory: dir, audit: audit}
}

// ListByAccount returns the account entries, newest first.
func (s *Service) ListByAccount(ctx context.Context, accountID string) ([]domain.Entry, error) {
	return s.repo.ListEntriesByAccount(ctx, accountID)
}

// ListByOrder returns the entries linked to an order.
func (s *Service) ListByOrder(ctx context.Context, orderID string) ([]domain.Entry, error) {
	return s.repo.ListEntriesByReference(ctx, orderID)
}

// Get returns the entry with the given id.
func (s *Service) Get(ctx context.Context, id string) (domain.Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

// MarkCompleted settles a pending entry.
func (s *Service) MarkCompleted(ctx context.Context, id string) (domain.Entry, error) {
	return s.repo.UpdateEntryStatus(ctx, id, domain.EntryCompleted)
}

// MarkCancelled voids a pending entry.
func (s *Service) MarkCancelled(ctx context.Context, id string) (domain.Entry, error) {
	return s.repo.UpdateEntryStatus(ctx, id, domain.EntryCancelled)
}

// SettleOrder moves the pending entries of the order held by one of accountIDs to status
// and returns how many changed.
//
// Entries that settle concurrently are skipped.
func (s *Service) SettleOrder(ctx context.Context, orderID string, accountIDs []string, status domain.EntryStatus) (int, error) {
	l := zerolog.Ctx(ctx)

	entries, err := s.repo.ListEntriesByReference(ctx, orderID)
	if err != nil {
		return 0, err
	}

	parties := make(map[string]struct{}, len(accountIDs))
	for _, id := range accountIDs {
		parties[id] = struct{}{}
	}

	var n int

	for _, e := range entries {
		if e.Status != domain.EntryPending {
			continue
		}

		if _, ok := parties[e.AccountID]; !ok {
			continue
		}

		if _, err := s.repo.UpdateEntryStatus(ctx, e.ID, status); err != nil {
			if errors.Is(err, domain.ErrInvalidStateTransition) {
				continue
			}

			l.Error().Err(err).Str("entry_id", e.ID).Msg("cannot settle order entry")

			return n, err
		}

		n++
	}

	return n, nil
}

// SetStatus lets staff or admins settle a pending entry by hand.
func (s *Service) SetStatus(ctx context.Context, actorID, entryID string, status domain.EntryStatus) (domain.Entry, error) {
	if status != domain.EntryCompleted && status != domain.EntryCancelled {
		return domain.Entry{}, domain.ErrInvalidStateTransition
	}

	actor, err := s.directory.Resolve(ctx, actorID)
	if err != nil || (actor.Role != domain.RoleAdmin && actor.Role != domain.RoleStaff) {
		return domain.Entry{}, domain.ErrUnauthorizedActor
	}

	e, err := s.repo.UpdateEntryStatus(ctx, entryID, status)
	if err != nil {
		return domain.Entry{}, err
	}

	s.audit.LogAction(ctx, actor.ID, actor.Name, domain.ActionEntryStatus, map[string]any{
		"entry_id": e.ID,
		"status":   e.Status,
	})

	return e, nil
}
