// Package services defines the business logic for presence, unread activity,
// settings, messaging, and administration. This file centralizes the error
// taxonomy shared by every service so callers can classify failures with
// errors.Is / errors.As.
//
// Translation into HTTP status codes happens in the handler layer.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrUserNotFound indicates that the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrForbidden is returned when the caller lacks the master role.
	ErrForbidden = errors.New("forbidden")

	// ErrSettingNotFound is returned when a settings key has no stored value.
	ErrSettingNotFound = errors.New("setting not found")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true for any *ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// DataAccessError wraps a store failure with the operation that hit it.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *DataAccessError) Unwrap() error { return e.Err }

func dataAccess(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DataAccessError{Op: op, Err: err}
}
