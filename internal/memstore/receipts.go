package memstore

import (
	"context"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/google/uuid"
)

// CreateReceipt stores a new receipt.
func (s *Store) CreateReceipt(_ context.Context, arg domain.CreateReceiptParams) (domain.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if arg.Kind == domain.ReceiptOrder && arg.OrderID != "" {
		if _, ok := s.orders[arg.OrderID]; ok {
			return domain.Receipt{}, domain.ErrDuplicateOrder
		}
	}

	now := s.now()
	r := domain.Receipt{
		ID:               uuid.NewString(),
		TransactionID:    arg.TransactionID,
		OrderID:          arg.OrderID,
		AccountID:        arg.AccountID,
		Kind:             arg.Kind,
		Amount:           arg.Amount,
		Description:      arg.Description,
		CounterpartyName: arg.CounterpartyName,
		LineItems:        append([]domain.LineItem(nil), arg.LineItems...),
		Status:           arg.Status,
		BuyerID:          arg.BuyerID,
		SellerID:         arg.SellerID,
		EscrowAccountID:  arg.EscrowAccountID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	s.receipts[r.ID] = r
	if r.Kind == domain.ReceiptOrder && r.OrderID != "" {
		s.orders[r.OrderID] = r.ID
	}
	s.receiptOrder = append(s.receiptOrder, r.ID)

	return r, nil
}

// GetReceipt returns the receipt with the given id.
func (s *Store) GetReceipt(_ context.Context, id string) (domain.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.receipts[id]
	if !ok {
		return domain.Receipt{}, domain.ErrReceiptNotFound
	}

	return r, nil
}

// ListReceiptsByAccount returns the receipts addressed to the account or naming it as seller, newest first.
func (s *Store) ListReceiptsByAccount(_ context.Context, accountID string) ([]domain.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := []domain.Receipt{}

	for i := len(s.receiptOrder) - 1; i >= 0; i-- {
		r := s.receipts[s.receiptOrder[i]]
		if r.AccountID == accountID || r.SellerID == accountID {
			items = append(items, r)
		}
	}

	return items, nil
}

// CompareAndSetReceiptStatus sets the status only if it currently equals from.
func (s *Store) CompareAndSetReceiptStatus(_ context.Context, id string, from, to domain.ReceiptStatus) (domain.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.receipts[id]
	if !ok {
		return domain.Receipt{}, domain.ErrReceiptNotFound
	}

	if r.Status != from {
		return domain.Receipt{}, domain.ErrInvalidStateTransition
	}

	r.Status = to
	r.UpdatedAt = s.now()
	s.receipts[id] = r

	return r, nil
}
