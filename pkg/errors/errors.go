package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUserNotFound    = errors.New("user not found")
	ErrLoanNotFound    = errors.New("loan not found")
	ErrLoanConflict    = errors.New("conflicting loan state")
	ErrForbidden       = errors.New("operation not permitted for this role")
	ErrVersionConflict = errors.New("record was modified concurrently")
	ErrSweepLocked     = errors.New("penalty sweep already in progress")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeConflict    = "CONFLICT"
	ErrCodeForbidden   = "FORBIDDEN"
	ErrCodePersistence = "PERSISTENCE_ERROR"
)

// Wrap common errors with business context

func WrapInvalidInput(detail string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		detail,
		ErrInvalidInput,
	)
}

func WrapUserNotFound(memberNumber int64) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("No user found with member number %d", memberNumber),
		ErrUserNotFound,
	)
}

func WrapLoanNotFound(memberNumber int64) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("No matching loan found for member number %d", memberNumber),
		ErrLoanNotFound,
	)
}

func WrapNoLoansForStatus(status string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("No loans found with status %s", status),
		ErrLoanNotFound,
	)
}

func WrapPendingLoanExists(memberNumber int64) *BusinessError {
	return NewBusinessError(
		ErrCodeConflict,
		fmt.Sprintf("Member %d already has a pending loan awaiting review", memberNumber),
		ErrLoanConflict,
	)
}

func WrapActiveLoanExists(memberNumber int64) *BusinessError {
	return NewBusinessError(
		ErrCodeConflict,
		fmt.Sprintf("Member %d still has an outstanding loan", memberNumber),
		ErrLoanConflict,
	)
}

func WrapForbidden(role string) *BusinessError {
	return NewBusinessError(
		ErrCodeForbidden,
		fmt.Sprintf("Access denied for role %s", role),
		ErrForbidden,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodePersistence,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodePersistence,
		"cache operation failed",
		err,
	)
}
