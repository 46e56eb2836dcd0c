package domain

import (
	"errors"
	"strings"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username/email or password")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrSessionNotFound    = errors.New("session not found")
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrDuplicateExpense   = errors.New("expense with this idempotency key already exists")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCategoryExists     = errors.New("category already exists")
)

// ValidationError carries every message produced by one validation pass.
// Err optionally classifies the failure, e.g. ErrUserExists.
type ValidationError struct {
	Errors []string
	Err    error
}

func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Errors: msgs}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Err }
