package domain

import "errors"

// ErrInvalidEscrowKind indicates an unknown escrow kind.
var ErrInvalidEscrowKind = errors.New("invalid escrow kind")

// EscrowKind selects the reserved account a deal is held in.
type EscrowKind string

// Escrow kinds.
const (
	EscrowMarketplace EscrowKind = "marketplace"
	EscrowTransfer    EscrowKind = "transfer"
)

// HoldParams is the input data to place funds in escrow.
type HoldParams struct {
	BuyerID   string
	SellerID  string
	Amount    int64
	OrderID   string
	Kind      EscrowKind
	LineItems []LineItem
}

// HoldResult is the result of placing funds in escrow.
type HoldResult struct {
	Receipt  Receipt        `json:"receipt"`
	Transfer TransferResult `json:"transfer"`
}

// ReleaseResult is the result of releasing escrowed funds to the seller.
type ReleaseResult struct {
	Receipt  Receipt        `json:"receipt"`
	Transfer TransferResult `json:"transfer"`
}
