// Package feeservice collects admission and school fees on behalf of institutions.
package feeservice

import (
	"context"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/pkg/moneypkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Poster moves value between accounts.
type Poster interface {
	Post(ctx context.Context, arg domain.PostingParams) (domain.PostingResult, error)
}

// Directory resolves institutions.
type Directory interface {
	Resolve(ctx context.Context, id string) (domain.Identity, error)
}

// Auditor records state-changing operations.
type Auditor interface {
	LogAction(ctx context.Context, actorID, actorName, kind string, metadata map[string]any)
}

// Split configures how the admission service fee is shared.
type Split struct {
	ServiceFee      int64
	PlatformAccount string
	AgentAccount    string
	PlatformPercent decimal.Decimal
}

// Service facilitates fee service layer logic.
type Service struct {
	poster    Poster
	directory Directory
	audit     Auditor
	split     Split
}

// New returns fee service.
func New(poster Poster, dir Directory, audit Auditor, split Split) *Service {
	return &Service{poster: poster, directory: dir, audit: audit, split: split}
}

func (s *Service) institution(ctx context.Context, id string) (domain.Identity, error) {
	inst, err := s.directory.Resolve(ctx, id)
	if err != nil || inst.Role != domain.RoleSchool {
		zerolog.Ctx(ctx).Info().Str("institution_id", id).Msg("no receiving institution")
		return domain.Identity{}, domain.ErrNoRecipientConfigured
	}

	return inst, nil
}

// PayAdmissionFee debits the payer once and splits the amount between the institution
// and the platform and agent revenue accounts.
//
// The service fee is taken off the top. Its platform share is PlatformPercent rounded
// down and the agent receives the rest.
func (s *Service) PayAdmissionFee(ctx context.Context, arg domain.AdmissionFeeParams) (domain.PostingResult, error) {
	if arg.Amount <= 0 || arg.Amount <= s.split.ServiceFee {
		return domain.PostingResult{}, domain.ErrInvalidAmount
	}

	inst, err := s.institution(ctx, arg.InstitutionID)
	if err != nil {
		return domain.PostingResult{}, err
	}

	platform, agent := moneypkg.Split(s.split.ServiceFee, s.split.PlatformPercent)

	credits := []domain.CreditLeg{{
		AccountID: inst.ID,
		Amount:    arg.Amount - s.split.ServiceFee,
		Category:  domain.CategoryAdmissionFeePayment,
	}}

	if platform > 0 {
		credits = append(credits, domain.CreditLeg{
			AccountID: s.split.PlatformAccount,
			Amount:    platform,
			Category:  domain.CategoryServiceFeeCredit,
		})
	}

	if agent > 0 {
		credits = append(credits, domain.CreditLeg{
			AccountID: s.split.AgentAccount,
			Amount:    agent,
			Category:  domain.CategoryServiceFeeCredit,
		})
	}

	res, err := s.poster.Post(ctx, domain.PostingParams{
		PayerID:          arg.PayerID,
		Category:         domain.CategoryAdmissionFeePayment,
		Description:      "Admission fee",
		DebitDescription: "Admission fee to " + inst.Name,
		Credits:          credits,
		Reference:        arg.Reference,
	})
	if err != nil {
		return domain.PostingResult{}, err
	}

	s.audit.LogAction(ctx, arg.PayerID, "", domain.ActionAdmissionFee, map[string]any{
		"institution_id": inst.ID,
		"amount":         arg.Amount,
		"service_fee":    s.split.ServiceFee,
		"reference":      arg.Reference,
	})

	return res, nil
}

// PaySchoolFee pays one installment to the institution.
func (s *Service) PaySchoolFee(ctx context.Context, arg domain.SchoolFeeParams) (domain.TransferResult, error) {
	if arg.Amount <= 0 {
		return domain.TransferResult{}, domain.ErrInvalidAmount
	}

	inst, err := s.institution(ctx, arg.InstitutionID)
	if err != nil {
		return domain.TransferResult{}, err
	}

	description := "School fee"
	if arg.Installment != "" {
		description += " (" + arg.Installment + ")"
	}

	res, err := s.poster.Post(ctx, domain.PostingParams{
		PayerID:     arg.PayerID,
		Category:    domain.CategoryFeePayment,
		Description: description,
		Credits:     []domain.CreditLeg{{AccountID: inst.ID, Amount: arg.Amount}},
		Reference:   arg.Installment,
	})
	if err != nil {
		return domain.TransferResult{}, err
	}

	s.audit.LogAction(ctx, arg.PayerID, "", domain.ActionSchoolFee, map[string]any{
		"institution_id": inst.ID,
		"amount":         arg.Amount,
		"installment":    arg.Installment,
	})

	return domain.TransferResult{
		FromAccount: res.Payer,
		ToAccount:   res.Recipients[0],
		FromEntry:   res.DebitEntry,
		ToEntry:     res.CreditEntries[0],
	}, nil
}
