package services

import (
	"github.com/go-playground/validator/v10"
)

// ValidationHelper provides shared request validation.
type ValidationHelper struct {
	validator *validator.Validate
}

func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

// ValidateStruct validates a struct against its validate tags.
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}
