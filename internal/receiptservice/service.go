// Package receiptservice manages user-facing receipts and order status.
package receiptservice

import (
	"context"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by receipt service layer.
type Repo interface {
	CreateReceipt(ctx context.Context, arg domain.CreateReceiptParams) (domain.Receipt, error)
	GetReceipt(ctx context.Context, id string) (domain.Receipt, error)
	ListReceiptsByAccount(ctx context.Context, accountID string) ([]domain.Receipt, error)
	CompareAndSetReceiptStatus(ctx context.Context, id string, from, to domain.ReceiptStatus) (domain.Receipt, error)
}

// Service facilitates receipt service layer logic.
type Service struct {
	repo Repo
}

// New returns receipt service.
func New(repo Repo) *Service {
	return &Service{repo: repo}
}

// Create stores a receipt. An empty status defaults to Completed.
func (s *Service) Create(ctx context.Context, arg domain.CreateReceiptParams) (domain.Receipt, error) {
	if arg.Status == "" {
		arg.Status = domain.ReceiptCompleted
	}

	if !arg.Status.IsValid() {
		return domain.Receipt{}, domain.ErrInvalidStateTransition
	}

	return s.repo.CreateReceipt(ctx, arg)
}

// Get returns the receipt with the given id.
func (s *Service) Get(ctx context.Context, id string) (domain.Receipt, error) {
	return s.repo.GetReceipt(ctx, id)
}

// ListByAccount returns the receipts visible to the account, newest first.
func (s *Service) ListByAccount(ctx context.Context, accountID string) ([]domain.Receipt, error) {
	return s.repo.ListReceiptsByAccount(ctx, accountID)
}

// UpdateStatus moves the receipt one step forward along Pending, Preparing,
// Out for Delivery, Delivered and Completed.
func (s *Service) UpdateStatus(ctx context.Context, id string, next domain.ReceiptStatus) (domain.Receipt, error) {
	l := zerolog.Ctx(ctx)

	r, err := s.repo.GetReceipt(ctx, id)
	if err != nil {
		return domain.Receipt{}, err
	}

	if !r.Status.CanAdvanceTo(next) {
		l.Info().Str("receipt_id", id).Str("from", string(r.Status)).Str("to", string(next)).Msg("rejected receipt transition")
		return domain.Receipt{}, domain.ErrInvalidStateTransition
	}

	return s.repo.CompareAndSetReceiptStatus(ctx, id, r.Status, next)
}

// CompareAndSetStatus sets the status only if it still equals from.
func (s *Service) CompareAndSetStatus(ctx context.Context, id string, from, to domain.ReceiptStatus) (domain.Receipt, error) {
	return s.repo.CompareAndSetReceiptStatus(ctx, id, from, to)
}
