package disbursementservice

import (
	"context"
	"math"
	"testing"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/internal/receiptservice"
	"github.com/go-petr/campus-wallet/internal/test"
	"github.com/go-petr/campus-wallet/internal/transferservice"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *test.Env) {
	t.Helper()

	env := test.NewEnv(t)
	transfers := transferservice.New(env.Store, env.Directory, nil, receiptservice.New(env.Store), env.Audit, test.Gateway)

	return New(transfers, env.Directory, env.Audit), env
}

func TestDisburse(t *testing.T) {
	s, env := newTestService(t)
	ctx := context.Background()

	payer := env.SeedIdentity(t, domain.RoleAdmin)
	x := env.SeedIdentity(t, domain.RoleStudent)
	y := env.SeedIdentity(t, domain.RoleStudent)
	z := env.SeedIdentity(t, domain.RoleStudent)
	env.Fund(t, payer.ID, 10000)

	res, err := s.Disburse(ctx, domain.DisburseParams{
		PayerID:            payer.ID,
		RecipientIDs:       []string{x.ID, y.ID, z.ID},
		AmountPerRecipient: 2000,
		Description:        "allowance",
	})
	require.NoError(t, err)

	require.Equal(t, int64(4000), res.Payer.Balance)
	require.Equal(t, int64(-6000), res.DebitEntry.Amount)
	require.Equal(t, domain.CategoryDisbursement, res.DebitEntry.Category)
	require.Equal(t, "allowance to 3 recipients", res.DebitEntry.Description)
	require.Len(t, res.CreditEntries, 3)

	for _, id := range []string{x.ID, y.ID, z.ID} {
		require.Equal(t, int64(2000), env.Balance(t, id))

		receipts, err := env.Store.ListReceiptsByAccount(ctx, id)
		require.NoError(t, err)
		require.Len(t, receipts, 1)
		require.Equal(t, domain.ReceiptReceived, receipts[0].Kind)
	}

	for _, e := range res.CreditEntries {
		require.Equal(t, domain.CategoryBursaryCredit, e.Category)
	}

	history, err := env.Store.ListEntriesByAccount(ctx, payer.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	require.Equal(t, []string{domain.ActionDisburse}, env.Audit.Kinds())
	env.RequireInvariants(t)
}

func TestDisburseAllOrNothing(t *testing.T) {
	s, env := newTestService(t)
	ctx := context.Background()

	payer := env.SeedIdentity(t, domain.RoleAdmin)
	x := env.SeedIdentity(t, domain.RoleStudent)
	y := env.SeedIdentity(t, domain.RoleStudent)
	z := env.SeedIdentity(t, domain.RoleStudent)
	env.Fund(t, payer.ID, 5000)

	entriesBefore := len(env.Store.Entries())

	_, err := s.Disburse(ctx, domain.DisburseParams{
		PayerID:            payer.ID,
		RecipientIDs:       []string{x.ID, y.ID, z.ID},
		AmountPerRecipient: 2000,
		Description:        "allowance",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	require.Equal(t, int64(5000), env.Balance(t, payer.ID))

	for _, id := range []string{x.ID, y.ID, z.ID} {
		_, err := env.Store.GetAccount(ctx, id)
		require.ErrorIs(t, err, domain.ErrAccountNotFound)
	}

	require.Len(t, env.Store.Entries(), entriesBefore)
	require.Empty(t, env.Audit.Kinds())
	env.RequireInvariants(t)
}

func TestDisburseValidation(t *testing.T) {
	s, env := newTestService(t)

	payer := env.SeedIdentity(t, domain.RoleAdmin)
	x := env.SeedIdentity(t, domain.RoleStudent)
	student := env.SeedIdentity(t, domain.RoleStudent)
	env.Fund(t, payer.ID, 5000)
	env.Fund(t, student.ID, 5000)

	testCases := []struct {
		name    string
		arg     domain.DisburseParams
		wantErr error
	}{
		{
			name:    "ZeroAmount",
			arg:     domain.DisburseParams{PayerID: payer.ID, RecipientIDs: []string{x.ID}},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "NoRecipients",
			arg:     domain.DisburseParams{PayerID: payer.ID, AmountPerRecipient: 1},
			wantErr: domain.ErrInvalidRecipient,
		},
		{
			name:    "DuplicateRecipient",
			arg:     domain.DisburseParams{PayerID: payer.ID, RecipientIDs: []string{x.ID, x.ID}, AmountPerRecipient: 1},
			wantErr: domain.ErrInvalidRecipient,
		},
		{
			name:    "PayerAsRecipient",
			arg:     domain.DisburseParams{PayerID: payer.ID, RecipientIDs: []string{x.ID, payer.ID}, AmountPerRecipient: 1},
			wantErr: domain.ErrSameAccount,
		},
		{
			name:    "FeePaymentCategory",
			arg:     domain.DisburseParams{PayerID: payer.ID, RecipientIDs: []string{x.ID}, AmountPerRecipient: 1, Category: domain.CategoryFeePayment},
			wantErr: domain.ErrInvalidCategory,
		},
		{
			name:    "StudentPayer",
			arg:     domain.DisburseParams{PayerID: student.ID, RecipientIDs: []string{x.ID}, AmountPerRecipient: 1},
			wantErr: domain.ErrUnauthorizedActor,
		},
		{
			name: "Overflow",
			arg: domain.DisburseParams{
				PayerID: payer.ID, RecipientIDs: []string{x.ID, "other"}, AmountPerRecipient: math.MaxInt64/2 + 1,
			},
			wantErr: domain.ErrInvalidAmount,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Disburse(context.Background(), tc.arg)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	require.Equal(t, int64(5000), env.Balance(t, payer.ID))
	require.Equal(t, int64(5000), env.Balance(t, student.ID))
}
