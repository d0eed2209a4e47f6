// Package escrowservice holds buyer funds in a reserved account until the order is delivered.
package escrowservice

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/url"
	"strings"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Poster moves value between accounts.
type Poster interface {
	Post(ctx context.Context, arg domain.PostingParams) (domain.PostingResult, error)
}

// Receipts owns the order receipt and its status.
type Receipts interface {
	Create(ctx context.Context, arg domain.CreateReceiptParams) (domain.Receipt, error)
	Get(ctx context.Context, id string) (domain.Receipt, error)
	UpdateStatus(ctx context.Context, id string, next domain.ReceiptStatus) (domain.Receipt, error)
	CompareAndSetStatus(ctx context.Context, id string, from, to domain.ReceiptStatus) (domain.Receipt, error)
}

// Ledger reads and settles the entries of an order.
type Ledger interface {
	ListByOrder(ctx context.Context, orderID string) ([]domain.Entry, error)
	SettleOrder(ctx context.Context, orderID string, accountIDs []string, status domain.EntryStatus) (int, error)
}

// Directory resolves account identifiers to display identities.
type Directory interface {
	Resolve(ctx context.Context, id string) (domain.Identity, error)
}

// Auditor records state-changing operations.
type Auditor interface {
	LogAction(ctx context.Context, actorID, actorName, kind string, metadata map[string]any)
}

// Service facilitates escrow service layer logic.
type Service struct {
	poster    Poster
	receipts  Receipts
	ledger    Ledger
	directory Directory
	audit     Auditor
	accounts  map[domain.EscrowKind]string
}

// New returns escrow service. Accounts maps each escrow kind to its reserved account.
func New(poster Poster, receipts Receipts, ledger Ledger, dir Directory, audit Auditor, accounts map[domain.EscrowKind]string) *Service {
	return &Service{
		poster:    poster,
		receipts:  receipts,
		ledger:    ledger,
		directory: dir,
		audit:     audit,
		accounts:  accounts,
	}
}

func holdCategory(kind domain.EscrowKind) domain.Category {
	if kind == domain.EscrowTransfer {
		return domain.CategoryTransferFeePayment
	}

	return domain.CategoryPayment
}

func transferResult(res domain.PostingResult) domain.TransferResult {
	return domain.TransferResult{
		FromAccount: res.Payer,
		ToAccount:   res.Recipients[0],
		FromEntry:   res.DebitEntry,
		ToEntry:     res.CreditEntries[0],
	}
}

// Hold moves the buyer's payment into escrow and opens a Pending order receipt.
//
// Hold entries stay pending until the order is released or cancelled.
func (s *Service) Hold(ctx context.Context, arg domain.HoldParams) (domain.HoldResult, error) {
	l := zerolog.Ctx(ctx)

	if arg.Kind == "" {
		arg.Kind = domain.EscrowMarketplace
	}

	escrowID, ok := s.accounts[arg.Kind]
	if !ok || escrowID == "" {
		return domain.HoldResult{}, domain.ErrInvalidEscrowKind
	}

	if arg.Amount <= 0 {
		return domain.HoldResult{}, domain.ErrInvalidAmount
	}

	if arg.BuyerID == arg.SellerID {
		return domain.HoldResult{}, domain.ErrSameAccount
	}

	if len(arg.LineItems) > 0 {
		sum, err := lineItemsTotal(arg.LineItems)
		if err != nil || sum != arg.Amount {
			return domain.HoldResult{}, domain.ErrInvalidAmount
		}
	}

	if arg.OrderID == "" {
		arg.OrderID = uuid.NewString()
	}

	seller, err := s.directory.Resolve(ctx, arg.SellerID)
	if err != nil {
		return domain.HoldResult{}, err
	}

	if arg.Kind == domain.EscrowTransfer && seller.Role != domain.RoleSchool {
		l.Info().Str("seller_id", seller.ID).Msg("transfer escrow must pay an institution")
		return domain.HoldResult{}, domain.ErrInvalidRecipient
	}

	buyer, err := s.directory.Resolve(ctx, arg.BuyerID)
	if err != nil {
		return domain.HoldResult{}, err
	}

	receipt, err := s.receipts.Create(ctx, domain.CreateReceiptParams{
		OrderID:          arg.OrderID,
		AccountID:        buyer.ID,
		Kind:             domain.ReceiptOrder,
		Amount:           arg.Amount,
		Description:      "Order " + arg.OrderID,
		CounterpartyName: seller.Name,
		LineItems:        arg.LineItems,
		Status:           domain.ReceiptPending,
		BuyerID:          buyer.ID,
		SellerID:         seller.ID,
		EscrowAccountID:  escrowID,
	})
	if err != nil {
		return domain.HoldResult{}, err
	}

	res, err := s.poster.Post(ctx, domain.PostingParams{
		PayerID:        buyer.ID,
		Category:       holdCategory(arg.Kind),
		Description:    "Payment for order " + arg.OrderID,
		Credits:        []domain.CreditLeg{{AccountID: escrowID, Amount: arg.Amount}},
		Reference:      arg.OrderID,
		Status:         domain.EntryPending,
		Counterparties: []string{seller.ID},
	})
	if err != nil {
		if _, cerr := s.receipts.CompareAndSetStatus(ctx, receipt.ID, domain.ReceiptPending, domain.ReceiptCancelled); cerr != nil {
			l.Error().Err(cerr).Str("receipt_id", receipt.ID).Msg("cannot cancel receipt of failed hold")
		}

		return domain.HoldResult{}, err
	}

	s.audit.LogAction(ctx, buyer.ID, buyer.Name, domain.ActionEscrowHold, map[string]any{
		"receipt_id": receipt.ID,
		"order_id":   arg.OrderID,
		"seller_id":  seller.ID,
		"amount":     arg.Amount,
		"kind":       arg.Kind,
	})

	return domain.HoldResult{Receipt: receipt, Transfer: transferResult(res)}, nil
}

func lineItemsTotal(items []domain.LineItem) (int64, error) {
	var sum int64

	for _, li := range items {
		if li.Quantity <= 0 || li.UnitPrice < 0 {
			return 0, domain.ErrInvalidAmount
		}

		if li.UnitPrice > (math.MaxInt64-sum)/int64(li.Quantity) {
			return 0, domain.ErrInvalidAmount
		}

		sum += li.UnitPrice * int64(li.Quantity)
	}

	return sum, nil
}

// Get returns the order receipt.
func (s *Service) Get(ctx context.Context, receiptID string) (domain.Receipt, error) {
	return s.receipts.Get(ctx, receiptID)
}

// Advance moves the order one step towards Delivered on behalf of its seller.
func (s *Service) Advance(ctx context.Context, receiptID, actorID string, next domain.ReceiptStatus) (domain.Receipt, error) {
	r, err := s.receipts.Get(ctx, receiptID)
	if err != nil {
		return domain.Receipt{}, err
	}

	if r.SellerID != actorID {
		return domain.Receipt{}, domain.ErrUnauthorizedActor
	}

	switch next {
	case domain.ReceiptPreparing, domain.ReceiptOutForDelivery, domain.ReceiptDelivered:
	default:
		return domain.Receipt{}, domain.ErrInvalidStateTransition
	}

	r, err = s.receipts.UpdateStatus(ctx, receiptID, next)
	if err != nil {
		return domain.Receipt{}, err
	}

	s.audit.LogAction(ctx, actorID, r.CounterpartyName, domain.ActionReceiptStatus, map[string]any{
		"receipt_id": r.ID,
		"order_id":   r.OrderID,
		"status":     r.Status,
	})

	return r, nil
}

// Release pays the escrowed amount to the seller once the order is Delivered.
//
// The receipt is moved to Completed before funds leave escrow. A Completed receipt whose
// seller was never paid is released again; otherwise the call fails with ErrAlreadyReleased.
// The seller payment is checked for inside the posting so it is made at most once.
func (s *Service) Release(ctx context.Context, receiptID, claimedSellerID string) (domain.ReleaseResult, error) {
	l := zerolog.Ctx(ctx)

	r, err := s.receipts.Get(ctx, receiptID)
	if err != nil {
		return domain.ReleaseResult{}, err
	}

	var resume bool

	switch r.Status {
	case domain.ReceiptCompleted:
		paid, err := s.sellerPaid(ctx, r)
		if err != nil {
			return domain.ReleaseResult{}, err
		}

		if paid {
			return domain.ReleaseResult{}, domain.ErrAlreadyReleased
		}

		resume = true
	case domain.ReceiptDelivered:
	default:
		return domain.ReleaseResult{}, domain.ErrNotYetDelivered
	}

	if NormalizeAccountID(claimedSellerID) != r.SellerID {
		l.Info().Str("receipt_id", r.ID).Msg("claimed seller does not match receipt")
		return domain.ReleaseResult{}, domain.ErrSellerMismatch
	}

	buyer, err := s.directory.Resolve(ctx, r.BuyerID)
	if err != nil {
		return domain.ReleaseResult{}, domain.ErrBuyerNotFound
	}

	completed := r

	if !resume {
		completed, err = s.receipts.CompareAndSetStatus(ctx, r.ID, domain.ReceiptDelivered, domain.ReceiptCompleted)
		if err != nil {
			if !errors.Is(err, domain.ErrInvalidStateTransition) {
				return domain.ReleaseResult{}, err
			}

			if fresh, gerr := s.receipts.Get(ctx, r.ID); gerr == nil && fresh.Status == domain.ReceiptCompleted {
				return domain.ReleaseResult{}, domain.ErrAlreadyReleased
			}

			return domain.ReleaseResult{}, domain.ErrNotYetDelivered
		}
	} else {
		l.Warn().Str("receipt_id", r.ID).Msg("resuming release of completed order")
	}

	res, err := s.poster.Post(ctx, domain.PostingParams{
		PayerID:     r.EscrowAccountID,
		PayerName:   buyer.Name,
		Category:    domain.CategoryPayment,
		Description: "Payment for order " + r.OrderID,
		Credits:     []domain.CreditLeg{{AccountID: r.SellerID, Amount: r.Amount}},
		Reference:   r.OrderID,
		Guard: func(ctx context.Context, tx domain.LedgerTx) error {
			entries, err := tx.ListEntriesByReference(ctx, r.OrderID)
			if err != nil {
				return err
			}

			if hasSellerPayment(r, entries) {
				return domain.ErrAlreadyReleased
			}

			return nil
		},
	})
	if err != nil {
		if !resume && !errors.Is(err, domain.ErrAlreadyReleased) {
			if _, rerr := s.receipts.CompareAndSetStatus(ctx, r.ID, domain.ReceiptCompleted, domain.ReceiptDelivered); rerr != nil {
				l.Error().Err(rerr).Str("receipt_id", r.ID).Msg("cannot revert receipt of failed release")
			}
		}

		return domain.ReleaseResult{}, err
	}

	if _, err := s.ledger.SettleOrder(ctx, r.OrderID, []string{r.BuyerID, r.EscrowAccountID}, domain.EntryCompleted); err != nil {
		l.Error().Err(err).Str("order_id", r.OrderID).Msg("cannot complete hold entries")
	}

	s.audit.LogAction(ctx, buyer.ID, buyer.Name, domain.ActionEscrowRelease, map[string]any{
		"receipt_id": r.ID,
		"order_id":   r.OrderID,
		"seller_id":  r.SellerID,
		"amount":     r.Amount,
	})

	return domain.ReleaseResult{Receipt: completed, Transfer: transferResult(res)}, nil
}

func (s *Service) sellerPaid(ctx context.Context, r domain.Receipt) (bool, error) {
	entries, err := s.ledger.ListByOrder(ctx, r.OrderID)
	if err != nil {
		return false, err
	}

	return hasSellerPayment(r, entries), nil
}

// hasSellerPayment reports whether entries hold the escrow payout of the order to its seller.
func hasSellerPayment(r domain.Receipt, entries []domain.Entry) bool {
	for _, e := range entries {
		if e.AccountID == r.SellerID && e.CounterpartyID == r.EscrowAccountID &&
			e.Amount > 0 && e.Status != domain.EntryCancelled {
			return true
		}
	}

	return false
}

// Cancel refunds the buyer from escrow while the order is still Pending or Preparing.
func (s *Service) Cancel(ctx context.Context, receiptID, actorID string) (domain.Receipt, error) {
	l := zerolog.Ctx(ctx)

	r, err := s.receipts.Get(ctx, receiptID)
	if err != nil {
		return domain.Receipt{}, err
	}

	if actorID != r.BuyerID && actorID != r.SellerID {
		return domain.Receipt{}, domain.ErrUnauthorizedActor
	}

	if r.Status != domain.ReceiptPending && r.Status != domain.ReceiptPreparing {
		return domain.Receipt{}, domain.ErrInvalidStateTransition
	}

	cancelled, err := s.receipts.CompareAndSetStatus(ctx, r.ID, r.Status, domain.ReceiptCancelled)
	if err != nil {
		return domain.Receipt{}, err
	}

	_, err = s.poster.Post(ctx, domain.PostingParams{
		PayerID:     r.EscrowAccountID,
		Category:    domain.CategoryPayment,
		Description: "Refund for order " + r.OrderID,
		Credits:     []domain.CreditLeg{{AccountID: r.BuyerID, Amount: r.Amount}},
		Reference:   r.OrderID,
	})
	if err != nil {
		if _, rerr := s.receipts.CompareAndSetStatus(ctx, r.ID, domain.ReceiptCancelled, r.Status); rerr != nil {
			l.Error().Err(rerr).Str("receipt_id", r.ID).Msg("cannot revert receipt of failed cancel")
		}

		return domain.Receipt{}, err
	}

	if _, err := s.ledger.SettleOrder(ctx, r.OrderID, []string{r.BuyerID, r.EscrowAccountID}, domain.EntryCancelled); err != nil {
		l.Error().Err(err).Str("order_id", r.OrderID).Msg("cannot cancel hold entries")
	}

	s.audit.LogAction(ctx, actorID, "", domain.ActionEscrowCancel, map[string]any{
		"receipt_id": r.ID,
		"order_id":   r.OrderID,
		"amount":     r.Amount,
	})

	return cancelled, nil
}

// NormalizeAccountID extracts an account id from a typed id or a scanned payment code.
//
// Accepted forms are a bare id, "acct:<id>", "campuspay://pay?account=<id>" and
// a JSON object with an "accountId" field.
func NormalizeAccountID(raw string) string {
	s := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(s, "{"):
		var payload struct {
			AccountID string `json:"accountId"`
		}

		if err := json.Unmarshal([]byte(s), &payload); err == nil {
			return strings.TrimSpace(payload.AccountID)
		}
	case strings.HasPrefix(s, "campuspay://"):
		if u, err := url.Parse(s); err == nil {
			return strings.TrimSpace(u.Query().Get("account"))
		}
	case strings.HasPrefix(s, "acct:"):
		return strings.TrimSpace(strings.TrimPrefix(s, "acct:"))
	}

	return s
}
