package escrowdelivery

import (
	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ValidReceiptStatus validates whether the receipt status is known.
var ValidReceiptStatus validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(domain.ReceiptStatus); ok {
		return s.IsValid()
	}

	return false
}
