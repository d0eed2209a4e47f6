// Package policyservice evaluates guardian spending controls.
package policyservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/rs/zerolog"
)

// Trailing windows a cap is evaluated over.
const (
	DailyWindow  = 24 * time.Hour
	WeeklyWindow = 7 * 24 * time.Hour
)

// Repo provides data access layer interface needed by policy service layer.
type Repo interface {
	GetPolicy(ctx context.Context, accountID string) (domain.SpendingPolicy, error)
	UpsertPolicy(ctx context.Context, p domain.SpendingPolicy) (domain.SpendingPolicy, error)
}

// Directory resolves account roles.
type Directory interface {
	Resolve(ctx context.Context, id string) (domain.Identity, error)
}

// Auditor records state-changing operations.
type Auditor interface {
	LogAction(ctx context.Context, actorID, actorName, kind string, metadata map[string]any)
}

// Service facilitates policy service layer logic.
type Service struct {
	repo      Repo
	directory Directory
	audit     Auditor
	now       func() time.Time
}

// New returns policy service.
func New(repo Repo, dir Directory, audit Auditor) *Service {
	return &Service{repo: repo, directory: dir, audit: audit, now: time.Now}
}

// CheckDebit allows or denies a debit from a student account.
//
// Only payments are checked. Usage is recomputed from the ledger on every call.
func (s *Service) CheckDebit(ctx context.Context, usage domain.UsageReader, arg domain.CheckDebitParams) error {
	l := zerolog.Ctx(ctx)

	if arg.Category != domain.CategoryPayment {
		return nil
	}

	payer, err := s.directory.Resolve(ctx, arg.AccountID)
	if err != nil {
		return err
	}

	if payer.Role != domain.RoleStudent {
		return nil
	}

	p, err := s.repo.GetPolicy(ctx, arg.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrPolicyNotFound) {
			return nil
		}

		return err
	}

	for _, cp := range arg.Counterparties {
		if p.IsBlocked(cp) {
			l.Info().Str("account_id", arg.AccountID).Str("counterparty_id", cp).Msg("blocked counterparty")
			return &domain.PolicyViolationError{Reason: fmt.Sprintf("payments to %s are blocked", cp)}
		}
	}

	now := s.now()

	caps := []struct {
		name   string
		cap    int64
		window time.Duration
	}{
		{"daily", p.DailyCap, DailyWindow},
		{"weekly", p.WeeklyCap, WeeklyWindow},
	}

	for _, c := range caps {
		if c.cap <= 0 {
			continue
		}

		used, err := usage.SumDebits(ctx, arg.AccountID, domain.CategoryPayment, now.Add(-c.window))
		if err != nil {
			return err
		}

		if used+arg.Amount > c.cap {
			l.Info().Str("account_id", arg.AccountID).Int64("used", used).Int64("cap", c.cap).Msg(c.name + " cap exceeded")

			return &domain.PolicyViolationError{
				Reason: c.name + " spending limit exceeded",
				Window: c.name,
				Cap:    c.cap,
				Usage:  used,
			}
		}
	}

	return nil
}

// Get returns the account policy.
func (s *Service) Get(ctx context.Context, accountID string) (domain.SpendingPolicy, error) {
	return s.repo.GetPolicy(ctx, accountID)
}

// Set stores the policy on behalf of the actor.
//
// Guardians may configure a student account; the first guardian to do so becomes bound to it.
// Admins may configure any account.
func (s *Service) Set(ctx context.Context, actorID string, p domain.SpendingPolicy) (domain.SpendingPolicy, error) {
	if p.DailyCap < 0 || p.WeeklyCap < 0 {
		return domain.SpendingPolicy{}, domain.ErrInvalidAmount
	}

	actor, err := s.directory.Resolve(ctx, actorID)
	if err != nil {
		return domain.SpendingPolicy{}, domain.ErrUnauthorizedActor
	}

	current, err := s.repo.GetPolicy(ctx, p.AccountID)
	if err != nil && !errors.Is(err, domain.ErrPolicyNotFound) {
		return domain.SpendingPolicy{}, err
	}

	switch actor.Role {
	case domain.RoleAdmin:
		p.GuardianID = current.GuardianID
	case domain.RoleGuardian:
		if current.GuardianID != "" && current.GuardianID != actor.ID {
			return domain.SpendingPolicy{}, domain.ErrUnauthorizedActor
		}

		p.GuardianID = actor.ID
	default:
		return domain.SpendingPolicy{}, domain.ErrUnauthorizedActor
	}

	saved, err := s.repo.UpsertPolicy(ctx, p)
	if err != nil {
		return domain.SpendingPolicy{}, err
	}

	s.audit.LogAction(ctx, actor.ID, actor.Name, domain.ActionSetPolicy, map[string]any{
		"account_id": saved.AccountID,
		"daily_cap":  saved.DailyCap,
		"weekly_cap": saved.WeeklyCap,
		"blocked":    saved.Blocked,
	})

	return saved, nil
}
