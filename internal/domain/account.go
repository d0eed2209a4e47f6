// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidAmount indicates a zero or negative amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientFunds indicates that the account balance cannot cover the debit.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrSameAccount indicates a transfer whose payer and payee are the same account.
	ErrSameAccount = errors.New("payer and payee are the same account")
	// ErrAccountNotLocked indicates that a unit of work touched an account it did not lock.
	ErrAccountNotLocked = errors.New("account is not part of the unit of work")
)

// Account holds the wallet balance of a person or a reserved pseudo-account.
//
// Balance is kept in integer currency units and never goes below zero unless
// AllowOverdraft is set, which only the gateway account has.
type Account struct {
	ID             string    `json:"id"`
	Balance        int64     `json:"balance"`
	AllowOverdraft bool      `json:"allow_overdraft"`
	PinHash        string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasPin reports whether the owner has set a PIN.
func (a Account) HasPin() bool {
	return a.PinHash != ""
}

// Statement is an account balance together with its ledger history.
type Statement struct {
	Account Account `json:"account"`
	Entries []Entry `json:"entries"`
}
