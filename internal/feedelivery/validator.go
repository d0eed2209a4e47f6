package feedelivery

import (
	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ValidDisbursementCategory validates whether a disbursement may be recorded under the category.
var ValidDisbursementCategory validator.Func = func(fl validator.FieldLevel) bool {
	if c, ok := fl.Field().Interface().(domain.Category); ok {
		return c.IsDisbursementCategory()
	}

	return false
}
