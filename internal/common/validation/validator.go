package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate runs struct-tag validation and flattens the result into a
// JSON-friendly list. A nil return means the value passed.
func Validate(data interface{}) []ValidationError {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var errors []ValidationError
	for _, err := range err.(validator.ValidationErrors) {
		errors = append(errors, ValidationError{
			Field:   err.Field(),
			Message: fmt.Sprintf("field must satisfy %s constraint", err.Tag()),
		})
	}
	return errors
}

// ValidateRatio checks a mining threshold such as minimum support or
// confidence, which must lie in (0, 1].
func ValidateRatio(value float64) error {
	if value <= 0 || value > 1 {
		return fmt.Errorf("value must be in (0, 1], got %g", value)
	}
	return nil
}

// ValidateIntRange bounds a query parameter like result count or forecast
// periods, inclusive on both ends.
func ValidateIntRange(value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("value must be between %d and %d", min, max)
	}
	return nil
}
