// Package transferservice implements the double-entry posting primitive every value movement goes through.
package transferservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/rs/zerolog"
)

// Ledger runs units of work over a locked set of accounts.
type Ledger interface {
	Atomic(ctx context.Context, accountIDs []string, fn func(tx domain.LedgerTx) error) error
}

// Directory resolves account identifiers to display identities.
type Directory interface {
	Resolve(ctx context.Context, id string) (domain.Identity, error)
}

// PolicyChecker evaluates spending controls against the locked ledger state.
type PolicyChecker interface {
	CheckDebit(ctx context.Context, usage domain.UsageReader, arg domain.CheckDebitParams) error
}

// ReceiptEmitter creates user-facing receipts.
type ReceiptEmitter interface {
	Create(ctx context.Context, arg domain.CreateReceiptParams) (domain.Receipt, error)
}

// Auditor records state-changing operations.
type Auditor interface {
	LogAction(ctx context.Context, actorID, actorName, kind string, metadata map[string]any)
}

// Service facilitates transfer service layer logic.
type Service struct {
	ledger    Ledger
	directory Directory
	policy    PolicyChecker
	receipts  ReceiptEmitter
	audit     Auditor
	gateway   string
}

// New returns transfer service. Gateway is the reserved account top-ups and withdrawals settle against.
func New(ledger Ledger, dir Directory, policy PolicyChecker, receipts ReceiptEmitter, audit Auditor, gateway string) *Service {
	return &Service{
		ledger:    ledger,
		directory: dir,
		policy:    policy,
		receipts:  receipts,
		audit:     audit,
		gateway:   gateway,
	}
}

func (s *Service) validPosting(arg domain.PostingParams) error {
	if !arg.Category.IsValid() {
		return domain.ErrInvalidCategory
	}

	if len(arg.Credits) == 0 {
		return domain.ErrInvalidRecipient
	}

	seen := make(map[string]struct{}, len(arg.Credits))

	var total int64

	for _, c := range arg.Credits {
		if c.Amount <= 0 {
			return domain.ErrInvalidAmount
		}

		if c.AccountID == arg.PayerID {
			return domain.ErrSameAccount
		}

		if _, ok := seen[c.AccountID]; ok || c.AccountID == "" {
			return domain.ErrInvalidRecipient
		}

		seen[c.AccountID] = struct{}{}

		if total > (1<<63-1)-c.Amount {
			return domain.ErrInvalidAmount
		}

		total += c.Amount
	}

	if arg.PayerID == "" {
		return domain.ErrAccountNotFound
	}

	return nil
}

// Post debits the payer once and credits every leg inside a single unit of work.
//
// Either all balances and entries change or none do. Receipts for completed postings
// are emitted after the unit commits, and only to non-system accounts.
func (s *Service) Post(ctx context.Context, arg domain.PostingParams) (domain.PostingResult, error) {
	l := zerolog.Ctx(ctx)

	if arg.Category == "" {
		arg.Category = domain.CategoryPayment
	}

	if arg.Status == "" {
		arg.Status = domain.EntryCompleted
	}

	if err := s.validPosting(arg); err != nil {
		l.Info().Err(err).Str("payer_id", arg.PayerID).Msg("invalid posting")
		return domain.PostingResult{}, err
	}

	payer, err := s.directory.Resolve(ctx, arg.PayerID)
	if err != nil {
		return domain.PostingResult{}, err
	}

	payerLabel := payer.Name
	if arg.PayerName != "" {
		payerLabel = arg.PayerName
	}

	recipients := make([]domain.Identity, len(arg.Credits))
	ids := []string{arg.PayerID}

	for i, c := range arg.Credits {
		if recipients[i], err = s.directory.Resolve(ctx, c.AccountID); err != nil {
			return domain.PostingResult{}, err
		}

		ids = append(ids, c.AccountID)
	}

	var (
		result domain.PostingResult
		total  = arg.Total()
	)

	err = s.ledger.Atomic(ctx, ids, func(tx domain.LedgerTx) error {
		result = domain.PostingResult{}

		if _, err := tx.GetAccount(ctx, arg.PayerID); err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				return domain.ErrInsufficientFunds
			}

			return err
		}

		if arg.Guard != nil {
			if err := arg.Guard(ctx, tx); err != nil {
				return err
			}
		}

		if s.policy != nil {
			counterparties := make([]string, 0, len(arg.Credits)+len(arg.Counterparties))
			for _, c := range arg.Credits {
				counterparties = append(counterparties, c.AccountID)
			}

			counterparties = append(counterparties, arg.Counterparties...)

			if err := s.policy.CheckDebit(ctx, tx, domain.CheckDebitParams{
				AccountID:      arg.PayerID,
				Amount:         total,
				Category:       arg.Category,
				Counterparties: counterparties,
			}); err != nil {
				return err
			}
		}

		for _, c := range arg.Credits {
			if _, err := tx.GetOrCreateAccount(ctx, c.AccountID); err != nil {
				return err
			}
		}

		var err error
		if result.Payer, err = tx.Debit(ctx, arg.PayerID, total); err != nil {
			return err
		}

		debit := domain.CreateEntryParams{
			AccountID:   arg.PayerID,
			Amount:      -total,
			Category:    arg.Category,
			Description: debitDescription(arg, recipients),
			Status:      arg.Status,
			Reference:   arg.Reference,
		}

		if len(recipients) == 1 {
			debit.CounterpartyID = recipients[0].ID
			debit.CounterpartyName = recipients[0].Name
		}

		if result.DebitEntry, err = tx.CreateEntry(ctx, debit); err != nil {
			return err
		}

		for _, c := range arg.Credits {
			account, err := tx.Credit(ctx, c.AccountID, c.Amount)
			if err != nil {
				return err
			}

			category := c.Category
			if category == "" {
				category = arg.Category
			}

			description := c.Description
			if description == "" {
				description = label(arg.Description, category)
			}

			entry, err := tx.CreateEntry(ctx, domain.CreateEntryParams{
				AccountID:        c.AccountID,
				Amount:           c.Amount,
				Category:         category,
				Description:      description + " from " + payerLabel,
				Status:           arg.Status,
				CounterpartyID:   arg.PayerID,
				CounterpartyName: payerLabel,
				Reference:        arg.Reference,
			})
			if err != nil {
				return err
			}

			result.Recipients = append(result.Recipients, account)
			result.CreditEntries = append(result.CreditEntries, entry)
		}

		return nil
	})
	if err != nil {
		l.Info().Err(err).Str("payer_id", arg.PayerID).Int64("amount", total).Msg("posting rejected")
		return domain.PostingResult{}, err
	}

	if arg.Status == domain.EntryCompleted {
		s.emitReceipts(ctx, payer, payerLabel, recipients, result)
	}

	return result, nil
}

func label(description string, category domain.Category) string {
	if description != "" {
		return description
	}

	switch category {
	case domain.CategoryTopUp:
		return "Top-up"
	case domain.CategoryWithdrawal:
		return "Withdrawal"
	case domain.CategoryDisbursement, domain.CategoryBursaryCredit:
		return "Disbursement"
	default:
		return "Payment"
	}
}

func debitDescription(arg domain.PostingParams, recipients []domain.Identity) string {
	if arg.DebitDescription != "" {
		return arg.DebitDescription
	}

	base := label(arg.Description, arg.Category)
	if len(recipients) == 1 {
		return base + " to " + recipients[0].Name
	}

	return fmt.Sprintf("%s to %d recipients", base, len(recipients))
}

func (s *Service) emitReceipts(ctx context.Context, payer domain.Identity, payerLabel string, recipients []domain.Identity, res domain.PostingResult) {
	l := zerolog.Ctx(ctx)

	if s.receipts == nil {
		return
	}

	if payer.Role != domain.RoleSystem {
		counterparty := ""
		if len(recipients) == 1 {
			counterparty = recipients[0].Name
		}

		if _, err := s.receipts.Create(ctx, domain.CreateReceiptParams{
			TransactionID:    res.DebitEntry.ID,
			OrderID:          res.DebitEntry.Reference,
			AccountID:        payer.ID,
			Kind:             domain.ReceiptSent,
			Amount:           -res.DebitEntry.Amount,
			Description:      res.DebitEntry.Description,
			CounterpartyName: counterparty,
			Status:           domain.ReceiptCompleted,
		}); err != nil {
			l.Error().Err(err).Str("entry_id", res.DebitEntry.ID).Msg("cannot emit sent receipt")
		}
	}

	for i, r := range recipients {
		if r.Role == domain.RoleSystem {
			continue
		}

		entry := res.CreditEntries[i]

		if _, err := s.receipts.Create(ctx, domain.CreateReceiptParams{
			TransactionID:    entry.ID,
			OrderID:          entry.Reference,
			AccountID:        r.ID,
			Kind:             domain.ReceiptReceived,
			Amount:           entry.Amount,
			Description:      entry.Description,
			CounterpartyName: payerLabel,
			Status:           domain.ReceiptCompleted,
		}); err != nil {
			l.Error().Err(err).Str("entry_id", entry.ID).Msg("cannot emit received receipt")
		}
	}
}

// Transfer moves amount between two accounts with a pair of entries.
func (s *Service) Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error) {
	if arg.Amount <= 0 {
		return domain.TransferResult{}, domain.ErrInvalidAmount
	}

	if arg.FromAccountID == arg.ToAccountID {
		return domain.TransferResult{}, domain.ErrSameAccount
	}

	if arg.Category == "" {
		arg.Category = domain.CategoryPayment
	}

	res, err := s.Post(ctx, domain.PostingParams{
		PayerID:     arg.FromAccountID,
		PayerName:   arg.FromName,
		Category:    arg.Category,
		Description: arg.Description,
		Credits:     []domain.CreditLeg{{AccountID: arg.ToAccountID, Amount: arg.Amount}},
		Reference:   arg.Reference,
		Status:      arg.Status,
	})
	if err != nil {
		return domain.TransferResult{}, err
	}

	result := domain.TransferResult{
		FromAccount: res.Payer,
		ToAccount:   res.Recipients[0],
		FromEntry:   res.DebitEntry,
		ToEntry:     res.CreditEntries[0],
	}

	s.audit.LogAction(ctx, arg.FromAccountID, result.ToEntry.CounterpartyName, domain.ActionTransfer, map[string]any{
		"to_account_id": arg.ToAccountID,
		"amount":        arg.Amount,
		"category":      arg.Category,
		"reference":     arg.Reference,
	})

	return result, nil
}

// TopUp credits the account from the gateway through a simulated method.
func (s *Service) TopUp(ctx context.Context, accountID string, amount int64, method string) (domain.TransferResult, error) {
	if !domain.IsSupportedMethod(method) {
		return domain.TransferResult{}, domain.ErrInvalidMethod
	}

	if amount <= 0 {
		return domain.TransferResult{}, domain.ErrInvalidAmount
	}

	res, err := s.Post(ctx, domain.PostingParams{
		PayerID:     s.gateway,
		Category:    domain.CategoryTopUp,
		Description: "Top-up via " + method,
		Credits:     []domain.CreditLeg{{AccountID: accountID, Amount: amount}},
	})
	if err != nil {
		return domain.TransferResult{}, err
	}

	s.audit.LogAction(ctx, accountID, res.DebitEntry.CounterpartyName, domain.ActionTopUp, map[string]any{
		"amount": amount,
		"method": method,
	})

	return domain.TransferResult{
		FromAccount: res.Payer,
		ToAccount:   res.Recipients[0],
		FromEntry:   res.DebitEntry,
		ToEntry:     res.CreditEntries[0],
	}, nil
}

// Withdraw debits the account to the gateway through a simulated method.
func (s *Service) Withdraw(ctx context.Context, accountID string, amount int64, method string) (domain.TransferResult, error) {
	if !domain.IsSupportedMethod(method) {
		return domain.TransferResult{}, domain.ErrInvalidMethod
	}

	if amount <= 0 {
		return domain.TransferResult{}, domain.ErrInvalidAmount
	}

	res, err := s.Post(ctx, domain.PostingParams{
		PayerID:     accountID,
		Category:    domain.CategoryWithdrawal,
		Description: "Withdrawal via " + method,
		Credits:     []domain.CreditLeg{{AccountID: s.gateway, Amount: amount}},
	})
	if err != nil {
		return domain.TransferResult{}, err
	}

	s.audit.LogAction(ctx, accountID, res.CreditEntries[0].CounterpartyName, domain.ActionWithdraw, map[string]any{
		"amount": amount,
		"method": method,
	})

	return domain.TransferResult{
		FromAccount: res.Payer,
		ToAccount:   res.Recipients[0],
		FromEntry:   res.DebitEntry,
		ToEntry:     res.CreditEntries[0],
	}, nil
}
