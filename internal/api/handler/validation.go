package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
)

// validate é o validador compartilhado dos handlers, com as tags específicas
// do painel registradas.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// meta_account_id: "act_" seguido de dígitos.
	_ = v.RegisterValidation("meta_account_id", func(fl validator.FieldLevel) bool {
		return domain.AccountIDPattern.MatchString(fl.Field().String())
	})

	// safe_field: identificador seguro para nomes de campo e presets.
	_ = v.RegisterValidation("safe_field", func(fl validator.FieldLevel) bool {
		return domain.SafeFieldPattern.MatchString(fl.Field().String())
	})

	return v
}
