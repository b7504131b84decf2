package services

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or malformed input field, a value
// that cannot be coerced to its target type, or a reference to a
// product that does not exist. Handlers map it to a 400; every other
// error from a service is a storage failure and maps to a 500.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
