package apperrors

import "fmt"

// AppError carries an HTTP-ish status code alongside the wrapped cause.
// Repositories use it to surface infrastructure failures without leaking
// driver details to callers.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}
