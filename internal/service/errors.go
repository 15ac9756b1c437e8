package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	// It is returned for unknown emails, wrong passwords and accounts without a
	// local password alike.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrUnauthorized is returned when a bearer token cannot be resolved to a user.
	ErrUnauthorized = errors.New("could not validate credentials")
	// ErrUserAlreadyExists is returned when attempting to register with an existing email.
	ErrUserAlreadyExists = errors.New("email already registered")
)

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
