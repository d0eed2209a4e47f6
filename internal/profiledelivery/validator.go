package profiledelivery

import (
	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ValidRole validates whether the role can be registered.
var ValidRole validator.Func = func(fl validator.FieldLevel) bool {
	if r, ok := fl.Field().Interface().(domain.Role); ok {
		return r.IsValid() && r != domain.RoleSystem
	}

	return false
}
