package domain

import "errors"

// ErrNoRecipientConfigured indicates that no receiving institution exists for the main share.
var ErrNoRecipientConfigured = errors.New("no recipient configured")

// DisburseParams is the input data for a one-to-many payment.
type DisburseParams struct {
	PayerID            string
	RecipientIDs       []string
	AmountPerRecipient int64
	Description        string
	Category           Category
}

// AdmissionFeeParams is the input data for an admission fee payment.
type AdmissionFeeParams struct {
	PayerID       string
	InstitutionID string
	Amount        int64
	Reference     string
}

// SchoolFeeParams is the input data for a school fee installment.
type SchoolFeeParams struct {
	PayerID       string
	InstitutionID string
	Amount        int64
	Installment   string
}
