package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs validator tags over the input and flattens failures
// into a field -> problem map for ValidationError responses. A nil map means
// the input is valid.
func ValidateStruct(input interface{}) map[string]string {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"input": err.Error()}
	}

	problems := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		field := strings.ToLower(fieldErr.Field()[:1]) + fieldErr.Field()[1:]
		switch fieldErr.Tag() {
		case "required":
			problems[field] = "is required"
		case "min":
			problems[field] = fmt.Sprintf("must be at least %s", fieldErr.Param())
		case "max":
			problems[field] = fmt.Sprintf("cannot exceed %s", fieldErr.Param())
		case "oneof":
			problems[field] = fmt.Sprintf("must be one of: %s", fieldErr.Param())
		case "email":
			problems[field] = "must be a valid email address"
		default:
			problems[field] = fmt.Sprintf("failed %s validation", fieldErr.Tag())
		}
	}
	return problems
}
