package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fund(t *testing.T, s *Store, id string, amount int64) {
	t.Helper()

	_, err := s.EnsureAccount(context.Background(), "gateway", true)
	require.NoError(t, err)

	err = s.Atomic(context.Background(), []string{"gateway", id}, func(tx domain.LedgerTx) error {
		if _, err := tx.GetOrCreateAccount(context.Background(), id); err != nil {
			return err
		}

		if _, err := tx.Debit(context.Background(), "gateway", amount); err != nil {
			return err
		}

		_, err := tx.Credit(context.Background(), id, amount)

		return err
	})
	require.NoError(t, err)
}

func TestAtomicCommitsTogether(t *testing.T) {
	s := New()
	ctx := context.Background()
	fund(t, s, "a", 100)

	err := s.Atomic(ctx, []string{"b", "a"}, func(tx domain.LedgerTx) error {
		if _, err := tx.GetOrCreateAccount(ctx, "b"); err != nil {
			return err
		}

		if _, err := tx.Debit(ctx, "a", 40); err != nil {
			return err
		}

		if _, err := tx.Credit(ctx, "b", 40); err != nil {
			return err
		}

		if _, err := tx.CreateEntry(ctx, domain.CreateEntryParams{AccountID: "a", Amount: -40}); err != nil {
			return err
		}

		_, err := tx.CreateEntry(ctx, domain.CreateEntryParams{AccountID: "b", Amount: 40})

		return err
	})
	require.NoError(t, err)

	a, err := s.GetAccount(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, int64(60), a.Balance)

	b, err := s.GetAccount(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, int64(40), b.Balance)

	entries := s.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, domain.EntryCompleted, entries[0].Status)
}

func TestAtomicDiscardsOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	fund(t, s, "a", 100)

	boom := errors.New("boom")

	err := s.Atomic(ctx, []string{"a", "b"}, func(tx domain.LedgerTx) error {
		if _, err := tx.GetOrCreateAccount(ctx, "b"); err != nil {
			return err
		}

		if _, err := tx.Debit(ctx, "a", 40); err != nil {
			return err
		}

		if _, err := tx.CreateEntry(ctx, domain.CreateEntryParams{AccountID: "a", Amount: -40}); err != nil {
			return err
		}

		return boom
	})
	require.ErrorIs(t, err, boom)

	a, err := s.GetAccount(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, int64(100), a.Balance)

	_, err = s.GetAccount(ctx, "b")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	require.Empty(t, s.Entries())
}

func TestLedgerTxRules(t *testing.T) {
	s := New()
	ctx := context.Background()
	fund(t, s, "a", 10)

	err := s.Atomic(ctx, []string{"a"}, func(tx domain.LedgerTx) error {
		_, err := tx.Debit(ctx, "a", 11)
		require.ErrorIs(t, err, domain.ErrInsufficientFunds)

		_, err = tx.Credit(ctx, "a", 0)
		require.ErrorIs(t, err, domain.ErrInvalidAmount)

		_, err = tx.Debit(ctx, "a", -1)
		require.ErrorIs(t, err, domain.ErrInvalidAmount)

		_, err = tx.GetAccount(ctx, "other")
		require.ErrorIs(t, err, domain.ErrAccountNotLocked)

		_, err = tx.CreateEntry(ctx, domain.CreateEntryParams{AccountID: "other", Amount: 1})
		require.ErrorIs(t, err, domain.ErrAccountNotLocked)

		_, err = tx.CreateEntry(ctx, domain.CreateEntryParams{AccountID: "a"})
		require.ErrorIs(t, err, domain.ErrInvalidAmount)

		return nil
	})
	require.NoError(t, err)
}

func TestAtomicCanceledContext(t *testing.T) {
	s := New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Atomic(ctx, []string{"a"}, func(tx domain.LedgerTx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
}

func TestSumDebits(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := now

	s := New(WithClock(func() time.Time { return clock }))
	ctx := context.Background()
	fund(t, s, "a", 1_000)

	post := func(amount int64, category domain.Category, status domain.EntryStatus) {
		err := s.Atomic(ctx, []string{"a"}, func(tx domain.LedgerTx) error {
			_, err := tx.CreateEntry(ctx, domain.CreateEntryParams{
				AccountID: "a",
				Amount:    amount,
				Category:  category,
				Status:    status,
			})

			return err
		})
		require.NoError(t, err)
	}

	clock = now.Add(-48 * time.Hour)
	post(-100, domain.CategoryPayment, domain.EntryCompleted)

	clock = now.Add(-time.Hour)
	post(-200, domain.CategoryPayment, domain.EntryCompleted)
	post(-300, domain.CategoryPayment, domain.EntryCancelled)
	post(-400, domain.CategoryPayment, domain.EntryPending)
	post(-500, domain.CategoryFeePayment, domain.EntryCompleted)
	post(600, domain.CategoryPayment, domain.EntryCompleted)

	clock = now

	err := s.Atomic(ctx, []string{"a"}, func(tx domain.LedgerTx) error {
		day, err := tx.SumDebits(ctx, "a", domain.CategoryPayment, now.Add(-24*time.Hour))
		require.NoError(t, err)
		require.Equal(t, int64(600), day)

		week, err := tx.SumDebits(ctx, "a", domain.CategoryPayment, now.Add(-7*24*time.Hour))
		require.NoError(t, err)
		require.Equal(t, int64(700), week)

		_, err = tx.CreateEntry(ctx, domain.CreateEntryParams{AccountID: "a", Amount: -50, Category: domain.CategoryPayment})
		require.NoError(t, err)

		staged, err := tx.SumDebits(ctx, "a", domain.CategoryPayment, now.Add(-24*time.Hour))
		require.NoError(t, err)
		require.Equal(t, int64(650), staged)

		return nil
	})
	require.NoError(t, err)
}

func TestAtomicCrossingUnitsDoNotDeadlock(t *testing.T) {
	s := New()
	ctx := context.Background()
	fund(t, s, "a", 1_000)
	fund(t, s, "b", 1_000)

	move := func(from, to string) error {
		return s.Atomic(ctx, []string{from, to}, func(tx domain.LedgerTx) error {
			if _, err := tx.Debit(ctx, from, 1); err != nil {
				return err
			}

			_, err := tx.Credit(ctx, to, 1)

			return err
		})
	}

	var wg sync.WaitGroup

	for i := 0; i < 200; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			assert.NoError(t, move("a", "b"))
		}()

		go func() {
			defer wg.Done()
			assert.NoError(t, move("b", "a"))
		}()
	}

	wg.Wait()

	a, err := s.GetAccount(ctx, "a")
	require.NoError(t, err)

	b, err := s.GetAccount(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, int64(2_000), a.Balance+b.Balance)
}
