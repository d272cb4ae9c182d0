package flatdoc

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// Addressing errors
	ErrInvalidAddress = errors.New("invalid addressing expression")
	ErrMalformedPath  = errors.New("malformed canonical path")

	// Value errors
	ErrNotJSON = errors.New("value is not JSON-serializable")

	// Store errors
	ErrStoreUnavailable = errors.New("relational store unavailable")
	ErrStoreConflict    = errors.New("relational store conflict")
	ErrNoCollection     = errors.New("collection does not exist")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ErrorWithContext adds additional context to errors for better debugging and logging
type ErrorWithContext struct {
	Err     error
	Context map[string]interface{}
}

func (e *ErrorWithContext) Error() string {
	if len(e.Context) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (context: %+v)", e.Err, e.Context)
}

func (e *ErrorWithContext) Unwrap() error {
	return e.Err
}

// WithContext adds context to an error
func WithContext(err error, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ErrorWithContext{
		Err:     err,
		Context: context,
	}
}

// Common error checking helpers

// IsInvalidAddress checks if an error came from parsing an addressing expression
func IsInvalidAddress(err error) bool {
	return errors.Is(err, ErrInvalidAddress)
}

// IsMalformedPath checks if an error came from decoding a canonical path
func IsMalformedPath(err error) bool {
	return errors.Is(err, ErrMalformedPath)
}

// IsNoCollection checks if an error means the addressed collection was never created
func IsNoCollection(err error) bool {
	return errors.Is(err, ErrNoCollection)
}

// IsRetryable checks if an error is safe to retry
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrStoreConflict)
}

// IsPermanent checks if an error is permanent (not retryable)
func IsPermanent(err error) bool {
	return errors.Is(err, ErrInvalidAddress) ||
		errors.Is(err, ErrMalformedPath) ||
		errors.Is(err, ErrNotJSON) ||
		errors.Is(err, ErrInvalidConfig)
}
