// Package test provides shared test helpers.
package test

import (
	"context"
	"sync"
	"testing"

	"github.com/go-petr/campus-wallet/internal/directoryservice"
	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/internal/memstore"
	"github.com/go-petr/campus-wallet/pkg/randompkg"
)

// Reserved account ids used by the fixtures.
const (
	Gateway           = "sys:gateway"
	MarketplaceEscrow = "sys:escrow:marketplace"
	TransferEscrow    = "sys:escrow:transfer"
	PlatformFee       = "sys:revenue:platform"
	AgentFee          = "sys:revenue:agent"
)

// Reserved returns the reserved account labels.
func Reserved() map[string]string {
	return map[string]string{
		Gateway:           "Payment Gateway",
		MarketplaceEscrow: "Marketplace Escrow",
		TransferEscrow:    "Transfer Escrow",
		PlatformFee:       "Platform Revenue",
		AgentFee:          "Agent Revenue",
	}
}

// Env is an in-memory wallet with a directory and an audit recorder.
type Env struct {
	Store     *memstore.Store
	Directory *directoryservice.Service
	Audit     *AuditRecorder
}

// NewEnv returns an Env with the reserved accounts bootstrapped.
func NewEnv(t *testing.T, opts ...memstore.Option) *Env {
	t.Helper()

	store := memstore.New(opts...)

	for id := range Reserved() {
		if _, err := store.EnsureAccount(context.Background(), id, id == Gateway); err != nil {
			t.Fatalf("store.EnsureAccount(%q) returned error: %v", id, err)
		}
	}

	return &Env{
		Store:     store,
		Directory: directoryservice.New(store, Reserved()),
		Audit:     &AuditRecorder{},
	}
}

// SeedIdentity registers a random identity with the given role.
func (e *Env) SeedIdentity(t *testing.T, role domain.Role) domain.Identity {
	t.Helper()

	p := domain.Identity{
		ID:   randompkg.AccountID(string(role)),
		Name: randompkg.Name(),
		Role: role,
	}

	if _, err := e.Directory.Seed(context.Background(), p); err != nil {
		t.Fatalf("directory.Seed(%+v) returned error: %v", p, err)
	}

	return p
}

// Fund moves amount from the gateway to the account with a balanced pair of entries.
func (e *Env) Fund(t *testing.T, id string, amount int64) {
	t.Helper()

	ctx := context.Background()

	err := e.Store.Atomic(ctx, []string{Gateway, id}, func(tx domain.LedgerTx) error {
		if _, err := tx.GetOrCreateAccount(ctx, id); err != nil {
			return err
		}

		if _, err := tx.Debit(ctx, Gateway, amount); err != nil {
			return err
		}

		if _, err := tx.Credit(ctx, id, amount); err != nil {
			return err
		}

		if _, err := tx.CreateEntry(ctx, domain.CreateEntryParams{
			AccountID: Gateway, Amount: -amount, Category: domain.CategoryTopUp, CounterpartyID: id,
		}); err != nil {
			return err
		}

		_, err := tx.CreateEntry(ctx, domain.CreateEntryParams{
			AccountID: id, Amount: amount, Category: domain.CategoryTopUp, CounterpartyID: Gateway,
		})

		return err
	})
	if err != nil {
		t.Fatalf("Fund(%q, %d) returned error: %v", id, amount, err)
	}
}

// Balance returns the committed balance of the account, zero if it does not exist.
func (e *Env) Balance(t *testing.T, id string) int64 {
	t.Helper()

	a, err := e.Store.GetAccount(context.Background(), id)
	if err != nil {
		return 0
	}

	return a.Balance
}

// TotalBalance sums every account balance, the gateway included.
func (e *Env) TotalBalance() int64 {
	var total int64
	for _, a := range e.Store.Accounts() {
		total += a.Balance
	}

	return total
}

// LedgerSum sums every entry amount ever appended.
func (e *Env) LedgerSum() int64 {
	var total int64
	for _, en := range e.Store.Entries() {
		total += en.Amount
	}

	return total
}

// RequireInvariants fails the test if any non-overdraft balance is negative or the ledger is unbalanced.
func (e *Env) RequireInvariants(t *testing.T) {
	t.Helper()

	for _, a := range e.Store.Accounts() {
		if a.Balance < 0 && !a.AllowOverdraft {
			t.Errorf("account %s has negative balance %d", a.ID, a.Balance)
		}
	}

	if sum := e.LedgerSum(); sum != 0 {
		t.Errorf("ledger sum = %d, want 0", sum)
	}

	if total := e.TotalBalance(); total != 0 {
		t.Errorf("total balance = %d, want 0", total)
	}
}

// AuditRecorder collects audit actions in memory.
type AuditRecorder struct {
	mu      sync.Mutex
	Records []domain.AuditRecord
}

// LogAction records the action.
func (r *AuditRecorder) LogAction(_ context.Context, actorID, actorName, kind string, metadata map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Records = append(r.Records, domain.AuditRecord{
		ActorID:   actorID,
		ActorName: actorName,
		Kind:      kind,
		Metadata:  metadata,
	})
}

// Kinds returns the recorded action kinds in order.
func (r *AuditRecorder) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]string, 0, len(r.Records))
	for _, rec := range r.Records {
		kinds = append(kinds, rec.Kind)
	}

	return kinds
}
