package domain

import (
	"context"
	"errors"
)

var (
	// ErrInvalidRecipient indicates a recipient list that is empty, repeats an account or includes the payer.
	ErrInvalidRecipient = errors.New("invalid recipient")
	// ErrInvalidMethod indicates an unsupported top-up or withdrawal method.
	ErrInvalidMethod = errors.New("invalid method")
	// ErrInvalidCategory indicates a category the operation cannot record.
	ErrInvalidCategory = errors.New("invalid category")
)

// Simulated gateway methods.
const (
	MethodCard         = "card"
	MethodBankTransfer = "bank_transfer"
	MethodMobileMoney  = "mobile_money"
)

// IsSupportedMethod returns true if the gateway method is supported.
func IsSupportedMethod(method string) bool {
	switch method {
	case MethodCard, MethodBankTransfer, MethodMobileMoney:
		return true
	default:
		return false
	}
}

// TransferParams is the input data for a transfer between two accounts.
type TransferParams struct {
	FromAccountID string      `json:"from_account_id"`
	ToAccountID   string      `json:"to_account_id"`
	Amount        int64       `json:"amount"`
	Description   string      `json:"description"`
	Category      Category    `json:"category"`
	FromName      string      `json:"-"` // overrides the payer label on both entries
	Reference     string      `json:"reference,omitempty"`
	Status        EntryStatus `json:"-"` // defaults to completed
}

// TransferResult is the result of the transfer.
type TransferResult struct {
	FromAccount Account `json:"from_account"`
	ToAccount   Account `json:"to_account"`
	FromEntry   Entry   `json:"from_entry"`
	ToEntry     Entry   `json:"to_entry"`
}

// CreditLeg is one recipient share of a posting.
type CreditLeg struct {
	AccountID   string
	Amount      int64
	Category    Category
	Description string
}

// PostingParams is one debit balanced by one or more credit legs.
type PostingParams struct {
	PayerID          string
	PayerName        string // overrides the payer label on credit entries
	Category         Category
	Description      string
	DebitDescription string // replaces the generated debit description when set
	Credits          []CreditLeg
	Reference        string
	Status           EntryStatus
	// Counterparties are checked against the payer's spending policy in addition to the credit legs.
	Counterparties []string
	// Guard runs inside the unit of work before any write; an error aborts the posting.
	Guard func(ctx context.Context, tx LedgerTx) error
}

// Total returns the sum of the credit legs.
func (p PostingParams) Total() int64 {
	var total int64
	for _, c := range p.Credits {
		total += c.Amount
	}

	return total
}

// PostingResult is the result of a posting.
type PostingResult struct {
	Payer         Account   `json:"payer"`
	DebitEntry    Entry     `json:"debit_entry"`
	Recipients    []Account `json:"recipients"`
	CreditEntries []Entry   `json:"credit_entries"`
}
