// Package apperror defines the error taxonomy shared by services and handlers.
package apperror

import (
	"errors"
	"fmt"
)

// ErrNotFound marks operations that targeted a record that does not exist
// or is not owned by the caller. Handlers translate it to 404.
var ErrNotFound = errors.New("not found")

// ValidationError marks missing or malformed client input. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
