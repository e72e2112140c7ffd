package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation wraps every input validation failure
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an owner-scoped record does not exist
	ErrNotFound = errors.New("not found")

	// ErrPriceUnavailable is returned when a single holding cannot be priced
	ErrPriceUnavailable = errors.New("unable to fetch price")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidSession     = errors.New("invalid session")
	ErrSessionExpired     = errors.New("session expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrAuthProvider       = errors.New("authentication provider unavailable")
)

// ValidationError describes a rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
