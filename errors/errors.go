// Package errors provides error handling for sapfpad.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// Usage:
//
//	// Wrap with context
//	if err := pty.Start(cmd); err != nil {
//	    return errors.Wrap(err, "failed to spawn interpreter")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "is sapf installed and on PATH?")
//
//	// Check errors
//	if errors.Is(err, errors.ErrNotConnected) {
//	    // interpreter is gone, report and carry on
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Common sentinel errors for use across sapfpad.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = New("invalid request")

	// ErrNotConnected indicates the interpreter bridge is closed or was never started
	ErrNotConnected = New("not connected")

	// ErrMalformedTable indicates a symbol dictionary table failed validation
	ErrMalformedTable = New("malformed dictionary table")

	// ErrStartup marks conditions after which the application cannot continue
	ErrStartup = New("startup failed")
)

// IsNotConnected checks if an error is or wraps ErrNotConnected
func IsNotConnected(err error) bool {
	return err != nil && Is(err, ErrNotConnected)
}

// IsStartupError checks if an error is or wraps ErrStartup
func IsStartupError(err error) bool {
	return err != nil && Is(err, ErrStartup)
}

// NewMalformedTableError creates a malformed-table error with a formatted message
func NewMalformedTableError(format string, args ...interface{}) error {
	return Wrap(ErrMalformedTable, Newf(format, args...).Error())
}

// WrapStartup marks err as fatal for application startup, keeping its message
func WrapStartup(err error, context string) error {
	if err == nil {
		return nil
	}
	return Mark(Wrap(err, context), ErrStartup)
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}
