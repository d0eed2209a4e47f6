package ledgerrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

var (
	accountColumns = []string{"id", "balance", "allow_overdraft", "pin_hash", "created_at"}
	entryColumns   = []string{
		"id", "account_id", "amount", "category", "description", "status",
		"counterparty_id", "counterparty_name", "reference", "created_at",
	}
)

func newTestRepo(t *testing.T) (*RepoPGS, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	return NewRepoPGS(db), mock
}

func transfer(ctx context.Context, tx domain.LedgerTx) error {
	if _, err := tx.Debit(ctx, "b", 100); err != nil {
		return err
	}

	if _, err := tx.Credit(ctx, "a", 100); err != nil {
		return err
	}

	_, err := tx.CreateEntry(ctx, domain.CreateEntryParams{AccountID: "b", Amount: -100, Category: domain.CategoryPayment})

	return err
}

func TestAtomicCommit(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM accounts").
		WithArgs(pq.Array([]string{"a", "b"})).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("b"))
	mock.ExpectQuery("UPDATE accounts").
		WithArgs(int64(-100), "b").
		WillReturnRows(sqlmock.NewRows(accountColumns).AddRow("b", 0, false, "", now))
	mock.ExpectQuery("UPDATE accounts").
		WithArgs(int64(100), "a").
		WillReturnRows(sqlmock.NewRows(accountColumns).AddRow("a", 100, false, "", now))
	mock.ExpectQuery("INSERT INTO entries").
		WillReturnRows(sqlmock.NewRows(entryColumns).
			AddRow(uuid.NewString(), "b", -100, "payment", "", "completed", "", "", "", now))
	mock.ExpectCommit()

	err := repo.Atomic(context.Background(), []string{"b", "a", "b"}, func(tx domain.LedgerTx) error {
		return transfer(context.Background(), tx)
	})
	require.NoError(t, err)
}

func TestAtomicRollsBackOnInsufficientFunds(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM accounts").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("b"))
	mock.ExpectQuery("UPDATE accounts").
		WithArgs(int64(-100), "b").
		WillReturnError(&pq.Error{Constraint: "accounts_balance_check"})
	mock.ExpectRollback()

	err := repo.Atomic(context.Background(), []string{"a", "b"}, func(tx domain.LedgerTx) error {
		return transfer(context.Background(), tx)
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestAtomicBeginFails(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	err := repo.Atomic(context.Background(), []string{"a"}, func(tx domain.LedgerTx) error {
		t.Fatal("fn must not run")
		return nil
	})
	require.ErrorIs(t, err, errorspkg.ErrInternal)
}

func TestAtomicRejectsUnlockedAccounts(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM accounts").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a"))
	mock.ExpectRollback()

	err := repo.Atomic(context.Background(), []string{"a"}, func(tx domain.LedgerTx) error {
		_, err := tx.Credit(context.Background(), "z", 1)
		return err
	})
	require.ErrorIs(t, err, domain.ErrAccountNotLocked)
}
