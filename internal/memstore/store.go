// Package memstore keeps wallet state in process memory.
//
// Balance-changing work runs through Atomic, which locks the participating accounts in
// domain.LockOrder, stages every write and applies them together once the work succeeds.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/go-petr/campus-wallet/internal/domain"
)

// Store is an in-memory implementation of every repository the services need.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]domain.Account
	entries      []domain.Entry
	entryIdx     map[string]int
	policies     map[string]domain.SpendingPolicy
	resets       map[string]domain.ResetRequest
	receipts     map[string]domain.Receipt
	receiptOrder []string
	orders       map[string]string // order id -> order receipt id
	profiles     map[string]domain.Identity
	audit        []domain.AuditRecord

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex

	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		accounts: make(map[string]domain.Account),
		entryIdx: make(map[string]int),
		policies: make(map[string]domain.SpendingPolicy),
		resets:   make(map[string]domain.ResetRequest),
		receipts: make(map[string]domain.Receipt),
		orders:   make(map[string]string),
		profiles: make(map[string]domain.Identity),
		locks:    make(map[string]*sync.Mutex),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) accountLock(id string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	m, ok := s.locks[id]
	if !ok {
		m = &sync.Mutex{}
		s.locks[id] = m
	}

	return m
}

// lockAccounts locks ids in the given order and returns the matching unlock func.
func (s *Store) lockAccounts(ids []string) func() {
	held := make([]*sync.Mutex, 0, len(ids))

	for _, id := range ids {
		m := s.accountLock(id)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

// Atomic runs fn with exclusive access to the given accounts.
//
// Writes made through the LedgerTx are applied only if fn returns nil.
func (s *Store) Atomic(ctx context.Context, accountIDs []string, fn func(tx domain.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ids := domain.LockOrder(accountIDs)

	unlock := s.lockAccounts(ids)
	defer unlock()

	tx := newLedgerTx(s, ids)

	if err := fn(tx); err != nil {
		return err
	}

	s.commit(tx)

	return nil
}

func (s *Store) commit(tx *ledgerTx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range tx.accounts {
		s.accounts[id] = a
	}

	for _, e := range tx.entries {
		s.entryIdx[e.ID] = len(s.entries)
		s.entries = append(s.entries, e)
	}
}
