package receiptservice

import (
	"context"
	"testing"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/internal/memstore"
	"github.com/stretchr/testify/require"
)

func TestUpdateStatus(t *testing.T) {
	s := New(memstore.New())
	ctx := context.Background()

	r, err := s.Create(ctx, domain.CreateReceiptParams{
		AccountID: "stu-1",
		Kind:      domain.ReceiptOrder,
		Amount:    500,
		Status:    domain.ReceiptPending,
	})
	require.NoError(t, err)

	_, err = s.UpdateStatus(ctx, r.ID, domain.ReceiptDelivered)
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	for _, next := range []domain.ReceiptStatus{
		domain.ReceiptPreparing,
		domain.ReceiptOutForDelivery,
		domain.ReceiptDelivered,
	} {
		r, err = s.UpdateStatus(ctx, r.ID, next)
		require.NoError(t, err)
		require.Equal(t, next, r.Status)
	}

	_, err = s.UpdateStatus(ctx, r.ID, domain.ReceiptPending)
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = s.UpdateStatus(ctx, "missing", domain.ReceiptPreparing)
	require.ErrorIs(t, err, domain.ErrReceiptNotFound)
}

func TestCreateDefaultsToCompleted(t *testing.T) {
	s := New(memstore.New())

	r, err := s.Create(context.Background(), domain.CreateReceiptParams{AccountID: "stu-1", Kind: domain.ReceiptSent})
	require.NoError(t, err)
	require.Equal(t, domain.ReceiptCompleted, r.Status)

	list, err := s.ListByAccount(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = s.Create(context.Background(), domain.CreateReceiptParams{AccountID: "stu-1", Status: "Lost"})
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}
