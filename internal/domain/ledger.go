package domain

import (
	"context"
	"sort"
	"time"
)

// UsageReader reads spending totals from the ledger.
type UsageReader interface {
	// SumDebits returns the absolute total of non-cancelled debits of the given category
	// recorded on the account at or after since.
	SumDebits(ctx context.Context, accountID string, category Category, since time.Time) (int64, error)
}

// LedgerTx is a unit of work over a locked set of accounts.
//
// Balance changes and entries made through it become visible together when the
// unit commits, or not at all. Accounts outside the locked set fail with ErrAccountNotLocked.
type LedgerTx interface {
	UsageReader

	GetAccount(ctx context.Context, id string) (Account, error)
	GetOrCreateAccount(ctx context.Context, id string) (Account, error)
	Credit(ctx context.Context, id string, amount int64) (Account, error)
	Debit(ctx context.Context, id string, amount int64) (Account, error)
	CreateEntry(ctx context.Context, arg CreateEntryParams) (Entry, error)
	// ListEntriesByReference returns committed and staged entries linked to reference.
	ListEntriesByReference(ctx context.Context, reference string) ([]Entry, error)
}

// LockOrder returns the distinct account ids in the order units of work must lock them.
//
// Every store locks in ascending id order so that crossing transfers cannot deadlock.
func LockOrder(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	ordered := make([]string, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}

	sort.Strings(ordered)

	return ordered
}
