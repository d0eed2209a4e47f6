// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/go-petr/campus-wallet/internal/domain"
)

// Repo provides data access layer interface needed by account service layer.
type Repo interface {
	GetAccount(ctx context.Context, id string) (domain.Account, error)
	GetOrCreateAccount(ctx context.Context, id string) (domain.Account, error)
	EnsureAccount(ctx context.Context, id string, allowOverdraft bool) (domain.Account, error)
}

// EntryRepo provides the ledger reads needed for statements.
type EntryRepo interface {
	ListEntriesByAccount(ctx context.Context, accountID string) ([]domain.Entry, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo    Repo
	entries EntryRepo
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo, er EntryRepo) *Service {
	return &Service{repo: ar, entries: er}
}

// Get returns account for the given account ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Account, error) {
	return s.repo.GetAccount(ctx, id)
}

// GetOrCreate returns the account, creating it with zero balance on first reference.
func (s *Service) GetOrCreate(ctx context.Context, id string) (domain.Account, error) {
	return s.repo.GetOrCreateAccount(ctx, id)
}

// EnsureReserved bootstraps a reserved pseudo-account.
func (s *Service) EnsureReserved(ctx context.Context, id string, allowOverdraft bool) (domain.Account, error) {
	return s.repo.EnsureAccount(ctx, id, allowOverdraft)
}

// Statement returns the account balance with its entries, newest first.
func (s *Service) Statement(ctx context.Context, id string) (domain.Statement, error) {
	account, err := s.repo.GetOrCreateAccount(ctx, id)
	if err != nil {
		return domain.Statement{}, err
	}

	entries, err := s.entries.ListEntriesByAccount(ctx, id)
	if err != nil {
		return domain.Statement{}, err
	}

	return domain.Statement{Account: account, Entries: entries}, nil
}
