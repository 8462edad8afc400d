package apperrors

import "errors"

// Common application-specific errors. Handlers map these onto HTTP statuses;
// anything not in this taxonomy is treated as a persistence failure and
// surfaced to end users as a generic retry message.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("concurrent update lost the race")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrForbidden         = errors.New("operation not permitted")
	ErrDuplicateEntry    = errors.New("duplicate entry")
)

// ValidationError carries enough detail for the caller to correct the request.
// It is always safe to retry after fixing the input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func Validation(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
