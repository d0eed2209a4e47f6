package domain

import (
	"errors"
	"time"
)

var (
	// ErrEntryNotFound indicates that the ledger entry is not found.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrInvalidStateTransition indicates a status change that the current status does not permit.
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// Category is the kind of value movement an entry records.
type Category string

// Supported entry categories.
const (
	CategoryTopUp               Category = "top_up"
	CategoryPayment             Category = "payment"
	CategoryWithdrawal          Category = "withdrawal"
	CategoryFeePayment          Category = "fee_payment"
	CategoryAdmissionFeePayment Category = "admission_fee_payment"
	CategoryTransferFeePayment  Category = "transfer_fee_payment"
	CategoryDisbursement        Category = "disbursement"
	CategoryBursaryCredit       Category = "bursary_credit"
	CategoryServiceFeeCredit    Category = "service_fee_credit"
)

// Categories holds all the supported categories.
var Categories = []Category{
	CategoryTopUp,
	CategoryPayment,
	CategoryWithdrawal,
	CategoryFeePayment,
	CategoryAdmissionFeePayment,
	CategoryTransferFeePayment,
	CategoryDisbursement,
	CategoryBursaryCredit,
	CategoryServiceFeeCredit,
}

// IsValid returns true if the category is supported.
func (c Category) IsValid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}

	return false
}

// IsDisbursementCategory returns true if a disbursement may be recorded under the category.
func (c Category) IsDisbursementCategory() bool {
	return c == CategoryDisbursement || c == CategoryBursaryCredit
}

// EntryStatus is the settlement state of an entry.
type EntryStatus string

// Entry statuses. Only pending entries may change status.
const (
	EntryPending   EntryStatus = "pending"
	EntryCompleted EntryStatus = "completed"
	EntryCancelled EntryStatus = "cancelled"
)

// Entry holds one account's balance change.
type Entry struct {
	ID               string      `json:"id"`
	AccountID        string      `json:"account_id"`
	Amount           int64       `json:"amount"` // negative for debits
	Category         Category    `json:"category"`
	Description      string      `json:"description"`
	Status           EntryStatus `json:"status"`
	CounterpartyID   string      `json:"counterparty_id,omitempty"`
	CounterpartyName string      `json:"counterparty_name,omitempty"`
	Reference        string      `json:"reference,omitempty"` // order or fee linkage
	CreatedAt        time.Time   `json:"created_at"`
}

// IsDebit reports whether the entry decreased the balance.
func (e Entry) IsDebit() bool {
	return e.Amount < 0
}

// CreateEntryParams is the input data to append an entry.
type CreateEntryParams struct {
	AccountID        string
	Amount           int64
	Category         Category
	Description      string
	Status           EntryStatus
	CounterpartyID   string
	CounterpartyName string
	Reference        string
}
