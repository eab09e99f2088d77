package errors

import (
	"errors"
)

// Sentinel errors for different categories
var (
	// ErrDuplicateEvent - duplicate inbound event, drop silently
	ErrDuplicateEvent = errors.New("duplicate event")

	// ErrApprovalRequired - a high-risk step was deferred to an approval request
	ErrApprovalRequired = errors.New("approval required")

	// ErrPermissionDenied - caller does not own the resource being decided
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidInput - input rejected by validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound - resource not found
	ErrNotFound = errors.New("not found")

	// ErrConflict - state transition raced or target already decided
	ErrConflict = errors.New("conflict")

	// ErrRateLimited - caller exceeded the per-user message budget
	ErrRateLimited = errors.New("rate limited")

	// ErrPersistence - the run ledger itself is unavailable; fatal for the current message
	ErrPersistence = errors.New("persistence unavailable")

	// ErrInternal - generic internal error
	ErrInternal = errors.New("internal error")
)
