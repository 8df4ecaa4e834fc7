// Package dispatch defines the notifier capability contract and the error
// kinds shared by all provider adapters.
package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSupported is returned when a channel is invoked on a provider that cannot serve it.
	ErrNotSupported = errors.New("not supported")
	// ErrNotFound marks a transport-level "resource absent" condition.
	ErrNotFound = errors.New("not found")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports missing or invalid configuration, detected at
// construction or before a transport call is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotSupported returns an ErrNotSupported error naming the provider and channel.
func NotSupported(provider, channel string) error {
	return fmt.Errorf("%s: %s notifications: %w", provider, channel, ErrNotSupported)
}
