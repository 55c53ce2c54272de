package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
)

// registerCustomValidators installs domain-aware binding validations so bad
// enum values are rejected at the HTTP boundary with a field-level message.
func registerCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("paymentmethod", func(fl validator.FieldLevel) bool {
		switch domain.PaymentMethod(fl.Field().String()) {
		case domain.MethodBankTransfer, domain.MethodCash, domain.MethodCheque, domain.MethodGateway:
			return true
		}
		return false
	})

	_ = v.RegisterValidation("lifecycleaction", func(fl validator.FieldLevel) bool {
		switch domain.LifecycleAction(fl.Field().String()) {
		case domain.ActionSubmitApplication, domain.ActionStartReview, domain.ActionApprove,
			domain.ActionReject, domain.ActionDisburse, domain.ActionActivate,
			domain.ActionMarkDelinquent, domain.ActionCure, domain.ActionEscalateLegal,
			domain.ActionClose, domain.ActionSettle:
			return true
		}
		return false
	})
}
