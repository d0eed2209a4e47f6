package transferdelivery

import (
	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ValidMethod validates whether the gateway method is supported.
var ValidMethod validator.Func = func(fl validator.FieldLevel) bool {
	if m, ok := fl.Field().Interface().(string); ok {
		return domain.IsSupportedMethod(m)
	}

	return false
}
