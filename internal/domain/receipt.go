package domain

import (
	"errors"
	"time"
)

var (
	// ErrReceiptNotFound indicates that the receipt is not found.
	ErrReceiptNotFound = errors.New("receipt not found")
	// ErrAlreadyReleased indicates that escrowed funds for the receipt were already released.
	ErrAlreadyReleased = errors.New("escrow already released")
	// ErrNotYetDelivered indicates that the order has not reached the delivered state.
	ErrNotYetDelivered = errors.New("order not yet delivered")
	// ErrSellerMismatch indicates that the claimed seller is not the seller on the receipt.
	ErrSellerMismatch = errors.New("seller mismatch")
	// ErrBuyerNotFound indicates that the buyer on the receipt cannot be resolved.
	ErrBuyerNotFound = errors.New("buyer not found")
	// ErrDuplicateOrder indicates that an order receipt with the same order id already exists.
	ErrDuplicateOrder = errors.New("order already exists")
)

// ReceiptStatus is the delivery state of an order receipt.
type ReceiptStatus string

// Receipt statuses in forward order, followed by the terminal cancelled state.
const (
	ReceiptPending        ReceiptStatus = "Pending"
	ReceiptPreparing      ReceiptStatus = "Preparing"
	ReceiptOutForDelivery ReceiptStatus = "Out for Delivery"
	ReceiptDelivered      ReceiptStatus = "Delivered"
	ReceiptCompleted      ReceiptStatus = "Completed"
	ReceiptCancelled      ReceiptStatus = "Cancelled"
)

var receiptFlow = map[ReceiptStatus]ReceiptStatus{
	ReceiptPending:        ReceiptPreparing,
	ReceiptPreparing:      ReceiptOutForDelivery,
	ReceiptOutForDelivery: ReceiptDelivered,
	ReceiptDelivered:      ReceiptCompleted,
}

// CanAdvanceTo reports whether next is the status that directly follows s.
func (s ReceiptStatus) CanAdvanceTo(next ReceiptStatus) bool {
	return receiptFlow[s] == next
}

// IsValid returns true if the status is known.
func (s ReceiptStatus) IsValid() bool {
	_, ok := receiptFlow[s]
	return ok || s == ReceiptCompleted || s == ReceiptCancelled
}

// ReceiptKind tells who a receipt is addressed to.
type ReceiptKind string

// Receipt kinds.
const (
	ReceiptSent     ReceiptKind = "sent"
	ReceiptReceived ReceiptKind = "received"
	ReceiptOrder    ReceiptKind = "order"
)

// LineItem is one purchased item on an order receipt.
type LineItem struct {
	Name      string `json:"name" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	UnitPrice int64  `json:"unit_price" binding:"min=0"`
}

// Receipt is a user-facing record of a payment or an order.
type Receipt struct {
	ID               string        `json:"id"`
	TransactionID    string        `json:"transaction_id,omitempty"`
	OrderID          string        `json:"order_id,omitempty"`
	AccountID        string        `json:"account_id"`
	Kind             ReceiptKind   `json:"kind"`
	Amount           int64         `json:"amount"`
	Description      string        `json:"description"`
	CounterpartyName string        `json:"counterparty_name,omitempty"`
	LineItems        []LineItem    `json:"line_items,omitempty"`
	Status           ReceiptStatus `json:"status"`
	BuyerID          string        `json:"buyer_id,omitempty"`
	SellerID         string        `json:"seller_id,omitempty"`
	EscrowAccountID  string        `json:"escrow_account_id,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// CreateReceiptParams is the input data to create a receipt.
type CreateReceiptParams struct {
	TransactionID    string
	OrderID          string
	AccountID        string
	Kind             ReceiptKind
	Amount           int64
	Description      string
	CounterpartyName string
	LineItems        []LineItem
	Status           ReceiptStatus
	BuyerID          string
	SellerID         string
	EscrowAccountID  string
}
