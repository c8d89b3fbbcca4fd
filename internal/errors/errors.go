package errors

import (
	"errors"
	"fmt"
)

// Common error types for the messaging gateway
var (
	// Profile errors
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")

	// Session errors
	ErrNotConnected  = errors.New("session not connected")
	ErrQRUnavailable = errors.New("pairing code unavailable")

	// Flow / chatbot errors
	ErrFlowNotFound     = errors.New("flow not found")
	ErrChatbotNotFound  = errors.New("chatbot not found")
	ErrCapacityExceeded = errors.New("flow capacity exceeded")

	// Transport errors
	ErrTransportFailure = errors.New("transport failure")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
