package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

var (
	// ErrAccountNotFound is a NotFound scoped to accounts.
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	// ErrEntryNotFound is a NotFound scoped to journal entries.
	ErrEntryNotFound = fmt.Errorf("journal entry %w", ErrNotFound)

	// ErrDuplicateCode is returned when an account code is already taken.
	ErrDuplicateCode = fmt.Errorf("%w: account code", ErrDuplicate)
	// ErrInvalidParent is returned when a parent account is unknown or would form a cycle.
	ErrInvalidParent = fmt.Errorf("%w: invalid parent account", ErrValidation)

	ErrUnbalancedEntry        = errors.New("journal entry debits and credits do not balance")
	ErrInvalidState           = errors.New("operation not allowed in the current entry state")
	ErrAccountInUse           = errors.New("account is referenced by journal lines")
	ErrSystemAccountImmutable = errors.New("system account cannot be modified this way")
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError wraps err with a status code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
