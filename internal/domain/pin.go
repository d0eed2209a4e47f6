package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidPinFormat indicates a PIN that is not exactly four digits.
	ErrInvalidPinFormat = errors.New("pin must be exactly 4 digits")
	// ErrPinNotSet indicates that the account has no PIN.
	ErrPinNotSet = errors.New("pin not set")
	// ErrInvalidPin indicates a PIN mismatch.
	ErrInvalidPin = errors.New("invalid pin")
	// ErrDuplicatePendingRequest indicates that the account already has a pending reset request.
	ErrDuplicatePendingRequest = errors.New("pending reset request already exists")
	// ErrRequestNotFound indicates that no pending reset request has the given id.
	ErrRequestNotFound = errors.New("reset request not found")
)

// ResetStatus is the state of a PIN reset request.
type ResetStatus string

// Reset request statuses.
const (
	ResetPending   ResetStatus = "pending"
	ResetCompleted ResetStatus = "completed"
)

// ResetRequest is a locked-out owner's request to clear their PIN.
type ResetRequest struct {
	ID        string      `json:"id"`
	AccountID string      `json:"account_id"`
	Role      Role        `json:"role"`
	Status    ResetStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}
