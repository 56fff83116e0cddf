// internal/app/system/listview/errors.go
package listview

import "errors"

// ValidationError is a client-side pre-flight failure. No remote call is
// made when one is returned. Message is shown to the user as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid returns a *ValidationError with msg.
func Invalid(msg string) error { return &ValidationError{Message: msg} }

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
