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

// ErrForbidden indicates that the caller lacks the capability for the operation.
var ErrForbidden = errors.New("operation not permitted")

// ErrConflict indicates a concurrency conflict (lock contention or a
// serialization failure) on a counterparty balance or document posting state.
// Callers retry a bounded number of times before surfacing it.
var ErrConflict = errors.New("concurrency conflict")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrUnbalancedPosting indicates that a GL posting's debit and credit totals
// differ by more than the accepted rounding tolerance. Fatal for the current
// operation: the whole unit of work is abandoned.
var ErrUnbalancedPosting = errors.New("posting debits and credits do not balance")

// ErrAccountNotConfigured indicates that a required account role has no ledger
// account mapped for the hospital. Surfaced loudly rather than skipped: an
// incomplete posting is worse than a failed one.
var ErrAccountNotConfigured = errors.New("account role not configured for hospital")

// AppError carries a status code alongside a message and the wrapped cause.
// Repositories return these so handlers can map failures uniformly.
type AppError struct {
	Code    int
	Message string
	Err     error
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

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that unwraps to ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
