package domain

import (
	"fmt"
	"strings"
)

// Error types for consistent error handling across the service.

// ErrCSVParse indicates the uploaded statement could not be parsed at
// all (missing required headers or empty input). Carries the full
// error list produced by ingestion.
type ErrCSVParse struct {
	Errors []string
}

func (e *ErrCSVParse) Error() string {
	return fmt.Sprintf("unable to parse CSV: %s", strings.Join(e.Errors, "; "))
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

// ErrMissingCredential indicates a required credential is absent or
// implausible; it gates only the chat collaborator, never the pipeline.
type ErrMissingCredential struct {
	Name string
}

func (e *ErrMissingCredential) Error() string {
	return fmt.Sprintf("missing or invalid credential: %s", e.Name)
}
