package entryrepo

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

var columns = []string{
	"id", "account_id", "amount", "category", "description", "status",
	"counterparty_id", "counterparty_name", "reference", "created_at",
}

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

func TestCreateEntry(t *testing.T) {
	arg := domain.CreateEntryParams{
		AccountID:        "stu-1",
		Amount:           -3000,
		Category:         domain.CategoryPayment,
		Description:      "rent to Bola",
		CounterpartyID:   "stu-2",
		CounterpartyName: "Bola",
	}

	testCases := []struct {
		name       string
		buildStubs func(mock sqlmock.Sqlmock)
		check      func(t *testing.T, e domain.Entry, err error)
	}{
		{
			name: "OK",
			buildStubs: func(mock sqlmock.Sqlmock) {
				id := uuid.NewString()
				mock.ExpectQuery("INSERT INTO entries").
					WithArgs(sqlmock.AnyArg(), arg.AccountID, arg.Amount, arg.Category, arg.Description,
						domain.EntryCompleted, arg.CounterpartyID, arg.CounterpartyName, "").
					WillReturnRows(sqlmock.NewRows(columns).AddRow(id, arg.AccountID, arg.Amount, arg.Category,
						arg.Description, domain.EntryCompleted, arg.CounterpartyID, arg.CounterpartyName, "", time.Now()))
			},
			check: func(t *testing.T, e domain.Entry, err error) {
				require.NoError(t, err)
				require.Equal(t, arg.Amount, e.Amount)
				require.Equal(t, domain.EntryCompleted, e.Status)
				require.True(t, e.IsDebit())
			},
		},
		{
			name: "AccountFKey",
			buildStubs: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INSERT INTO entries").
					WillReturnError(&pq.Error{Constraint: "entries_account_id_fkey"})
			},
			check: func(t *testing.T, e domain.Entry, err error) {
				require.ErrorIs(t, err, domain.ErrAccountNotFound)
			},
		},
		{
			name: "AmountCheck",
			buildStubs: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INSERT INTO entries").
					WillReturnError(&pq.Error{Constraint: "entries_amount_check"})
			},
			check: func(t *testing.T, e domain.Entry, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidAmount)
			},
		},
		{
			name: "Internal",
			buildStubs: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INSERT INTO entries").WillReturnError(errors.New("broken pipe"))
			},
			check: func(t *testing.T, e domain.Entry, err error) {
				require.ErrorIs(t, err, errorspkg.ErrInternal)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newTestRepo(t)
			tc.buildStubs(mock)

			e, err := repo.CreateEntry(context.Background(), arg)
			tc.check(t, e, err)
		})
	}
}

func TestListEntriesByAccount(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM entries WHERE account_id = \\$1 ORDER BY created_at DESC").
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(uuid.NewString(), "stu-1", 10, "top_up", "b", "completed", "", "", "", now).
			AddRow(uuid.NewString(), "stu-1", -5, "payment", "a", "completed", "", "", "", now.Add(-time.Minute)))

	items, err := repo.ListEntriesByAccount(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "b", items[0].Description)
}

func TestUpdateEntryStatus(t *testing.T) {
	id := uuid.NewString()

	t.Run("OK", func(t *testing.T) {
		repo, mock := newTestRepo(t)

		mock.ExpectQuery("UPDATE entries").
			WithArgs(id, domain.EntryCompleted).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(id, "stu-1", -5, "payment", "", "completed", "", "", "order-1", time.Now()))

		e, err := repo.UpdateEntryStatus(context.Background(), id, domain.EntryCompleted)
		require.NoError(t, err)
		require.Equal(t, domain.EntryCompleted, e.Status)
	})

	t.Run("AlreadySettled", func(t *testing.T) {
		repo, mock := newTestRepo(t)

		mock.ExpectQuery("UPDATE entries").
			WithArgs(id, domain.EntryCancelled).
			WillReturnRows(sqlmock.NewRows(columns))
		mock.ExpectQuery("SELECT (.+) FROM entries WHERE id = \\$1").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(id, "stu-1", -5, "payment", "", "completed", "", "", "order-1", time.Now()))

		_, err := repo.UpdateEntryStatus(context.Background(), id, domain.EntryCancelled)
		require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mock := newTestRepo(t)

		mock.ExpectQuery("UPDATE entries").
			WithArgs(id, domain.EntryCancelled).
			WillReturnRows(sqlmock.NewRows(columns))
		mock.ExpectQuery("SELECT (.+) FROM entries WHERE id = \\$1").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.UpdateEntryStatus(context.Background(), id, domain.EntryCancelled)
		require.ErrorIs(t, err, domain.ErrEntryNotFound)
	})
}

func TestSumDebits(t *testing.T) {
	repo, mock := newTestRepo(t)
	since := time.Now().Add(-24 * time.Hour)

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(-amount\\), 0\\) FROM entries").
		WithArgs("stu-1", domain.CategoryPayment, since).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(6000))

	total, err := repo.SumDebits(context.Background(), "stu-1", domain.CategoryPayment, since)
	require.NoError(t, err)
	require.Equal(t, int64(6000), total)
}
