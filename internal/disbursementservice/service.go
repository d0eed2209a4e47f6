// Package disbursementservice pays one amount to many recipients in a single posting.
package disbursementservice

import (
	"context"
	"math"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/rs/zerolog"
)

// Poster moves value between accounts.
type Poster interface {
	Post(ctx context.Context, arg domain.PostingParams) (domain.PostingResult, error)
}

// Directory resolves the payer.
type Directory interface {
	Resolve(ctx context.Context, id string) (domain.Identity, error)
}

// Auditor records state-changing operations.
type Auditor interface {
	LogAction(ctx context.Context, actorID, actorName, kind string, metadata map[string]any)
}

// Service facilitates disbursement service layer logic.
type Service struct {
	poster    Poster
	directory Directory
	audit     Auditor
}

// New returns disbursement service.
func New(poster Poster, dir Directory, audit Auditor) *Service {
	return &Service{poster: poster, directory: dir, audit: audit}
}

// Disburse debits the payer once for the whole batch and credits every recipient.
//
// Nothing moves unless the payer can cover AmountPerRecipient for every recipient.
// Only disbursement categories are accepted and student payers are refused.
func (s *Service) Disburse(ctx context.Context, arg domain.DisburseParams) (domain.PostingResult, error) {
	l := zerolog.Ctx(ctx)

	if arg.AmountPerRecipient <= 0 {
		return domain.PostingResult{}, domain.ErrInvalidAmount
	}

	if len(arg.RecipientIDs) == 0 {
		return domain.PostingResult{}, domain.ErrInvalidRecipient
	}

	if arg.AmountPerRecipient > math.MaxInt64/int64(len(arg.RecipientIDs)) {
		return domain.PostingResult{}, domain.ErrInvalidAmount
	}

	if arg.Category == "" {
		arg.Category = domain.CategoryDisbursement
	}

	if !arg.Category.IsDisbursementCategory() {
		return domain.PostingResult{}, domain.ErrInvalidCategory
	}

	payer, err := s.directory.Resolve(ctx, arg.PayerID)
	if err != nil {
		return domain.PostingResult{}, err
	}

	if payer.Role == domain.RoleStudent {
		l.Info().Str("payer_id", payer.ID).Msg("students cannot disburse")
		return domain.PostingResult{}, domain.ErrUnauthorizedActor
	}

	creditCategory := arg.Category
	if arg.Category == domain.CategoryDisbursement {
		creditCategory = domain.CategoryBursaryCredit
	}

	credits := make([]domain.CreditLeg, 0, len(arg.RecipientIDs))
	for _, id := range arg.RecipientIDs {
		credits = append(credits, domain.CreditLeg{
			AccountID: id,
			Amount:    arg.AmountPerRecipient,
			Category:  creditCategory,
		})
	}

	res, err := s.poster.Post(ctx, domain.PostingParams{
		PayerID:     arg.PayerID,
		Category:    arg.Category,
		Description: arg.Description,
		Credits:     credits,
	})
	if err != nil {
		l.Info().Err(err).Str("payer_id", arg.PayerID).Int("recipients", len(credits)).Msg("disbursement rejected")
		return domain.PostingResult{}, err
	}

	s.audit.LogAction(ctx, arg.PayerID, "", domain.ActionDisburse, map[string]any{
		"recipients":           len(credits),
		"amount_per_recipient": arg.AmountPerRecipient,
		"total":                -res.DebitEntry.Amount,
		"category":             arg.Category,
	})

	return res, nil
}
