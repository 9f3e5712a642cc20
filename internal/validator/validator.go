// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("risk_profile", validateRiskProfile)
		_ = v.RegisterValidation("account_type", validateAccountType)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
	}
}

func validateRiskProfile(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Conservative", "Moderate", "Aggressive":
		return true
	}
	return false
}

func validateAccountType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Personal", "Business":
		return true
	}
	return false
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "buy", "sell":
		return true
	}
	return false
}
