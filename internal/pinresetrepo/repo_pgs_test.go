package pinresetrepo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "account_id", "role", "status", "created_at"}

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

func TestCreateResetRequest(t *testing.T) {
	repo, mock := newTestRepo(t)
	id := uuid.NewString()

	mock.ExpectQuery("INSERT INTO pin_reset_requests").
		WithArgs(sqlmock.AnyArg(), "stu-1", domain.RoleStudent).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(id, "stu-1", "student", "pending", time.Now()))
	mock.ExpectQuery("INSERT INTO pin_reset_requests").
		WithArgs(sqlmock.AnyArg(), "stu-1", domain.RoleStudent).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "pin_reset_requests_pending_idx"})

	r, err := repo.CreateResetRequest(context.Background(), "stu-1", domain.RoleStudent)
	require.NoError(t, err)
	require.Equal(t, id, r.ID)
	require.Equal(t, domain.ResetPending, r.Status)

	_, err = repo.CreateResetRequest(context.Background(), "stu-1", domain.RoleStudent)
	require.ErrorIs(t, err, domain.ErrDuplicatePendingRequest)
}

func TestCompleteReset(t *testing.T) {
	id := uuid.NewString()

	t.Run("OK", func(t *testing.T) {
		repo, mock := newTestRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE pin_reset_requests").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(id, "stu-1", "student", "completed", time.Now()))
		mock.ExpectExec("UPDATE accounts SET pin_hash = ''").
			WithArgs("stu-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		r, err := repo.CompleteReset(context.Background(), id)
		require.NoError(t, err)
		require.Equal(t, domain.ResetCompleted, r.Status)
	})

	t.Run("NotPending", func(t *testing.T) {
		repo, mock := newTestRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE pin_reset_requests").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(columns))
		mock.ExpectRollback()

		_, err := repo.CompleteReset(context.Background(), id)
		require.ErrorIs(t, err, domain.ErrRequestNotFound)
	})

	t.Run("MalformedID", func(t *testing.T) {
		repo, _ := newTestRepo(t)

		_, err := repo.CompleteReset(context.Background(), "nope")
		require.ErrorIs(t, err, domain.ErrRequestNotFound)
	})
}
