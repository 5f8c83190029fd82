package domain

import (
	"errors"
	"fmt"
)

// Error types for consistent error handling across the app core.
//
// Read paths may degrade to local mock data when the error is
// recoverable (network/timeout/circuit); write paths never do.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates invalid user input. Surfaced inline; never
// sent to the server.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrSessionExpired indicates a 401 from the backend: the local token
// has been cleared and the user must log in again.
type ErrSessionExpired struct{}

func (e *ErrSessionExpired) Error() string { return "Sessão expirada. Faça login novamente" }

// ErrForbidden indicates the user lacks permission for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrConflict indicates an illegal state transition, e.g. deciding an
// approval request that is no longer pending.
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string { return e.Message }

// ErrNetwork indicates a transport failure (connection refused, DNS).
// Recoverable: read paths fall back to mock data.
type ErrNetwork struct {
	Op  string
	Err error
}

func (e *ErrNetwork) Error() string {
	return fmt.Sprintf("network error [%s]: %v", e.Op, e.Err)
}

func (e *ErrNetwork) Unwrap() error { return e.Err }

// ErrTimeout indicates an operation exceeded the client deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error { return e.Err }

// Recoverable reports whether a read path may answer from mock data
// instead of failing.
func Recoverable(err error) bool {
	var network *ErrNetwork
	var timeout *ErrTimeout
	var circuit *ErrCircuitOpen
	var external *ErrExternalService
	return errors.As(err, &network) ||
		errors.As(err, &timeout) ||
		errors.As(err, &circuit) ||
		errors.As(err, &external)
}
