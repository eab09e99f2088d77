package errors

import (
	"errors"
	"fmt"
)

// Wrap adds context to an error, preserving its category for errors.Is.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsCategory checks if error belongs to a specific category.
func IsCategory(err error, category error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, category)
}

// NotFound wraps a message as a not-found error.
func NotFound(message string) error {
	return fmt.Errorf("%s: %w", message, ErrNotFound)
}

// PermissionDenied wraps a message as a permission-denied error.
func PermissionDenied(message string) error {
	return fmt.Errorf("%s: %w", message, ErrPermissionDenied)
}

// InvalidInput wraps a message as an invalid-input error.
func InvalidInput(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidInput)
}

// Conflict wraps a message as a conflict error.
func Conflict(message string) error {
	return fmt.Errorf("%s: %w", message, ErrConflict)
}

// Internal wraps a message as an internal error.
func Internal(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInternal)
}
