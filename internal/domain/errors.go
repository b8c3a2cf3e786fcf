package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique key collision.
	ErrAlreadyExists = errors.New("already exists")
	// ErrCheckoutInFlight is returned while a session already has a checkout waiting on the gateway.
	ErrCheckoutInFlight = errors.New("checkout already in progress")
	// ErrStaleCheckout is returned when the session moved on before the gateway answered.
	ErrStaleCheckout = errors.New("checkout response no longer matches the session")
	// ErrInvalidTransition is returned for navigation events the current screen does not accept.
	ErrInvalidTransition = errors.New("invalid screen transition")
	// ErrAdminLocked is returned when the admin gate has not been unlocked.
	ErrAdminLocked = errors.New("admin panel locked")
)

// ValidationError reports input the kiosk must reject before contacting any gateway.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// GatewayError reports a failed call to an upstream POS.
type GatewayError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *GatewayError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("gateway %s: upstream status %d", e.Op, e.Status)
	default:
		return fmt.Sprintf("gateway %s failed", e.Op)
	}
}

func (e *GatewayError) Unwrap() error { return e.Err }

// UserMessage is the text shown on the kiosk screen.
func (e *GatewayError) UserMessage() string {
	return "We could not send your order to the store. Please try again."
}

// FetchError reports a failed menu read.
type FetchError struct {
	Status int
	Body   string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch menu: %v", e.Err)
	}
	return fmt.Sprintf("fetch menu: upstream status %d", e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ConfigError reports missing configuration for an integration.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return "missing configuration " + e.Key
}

// PersistenceError reports a failed read or write of persisted kiosk state.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
