package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InvariantViolationError is returned when a caller asks for an operation that
// would break a bookkeeping invariant, e.g. removing a researcher from an empty lab.
type InvariantViolationError struct {
	*DomainError
	Component string
	Operation string
}

func NewInvariantViolationError(component, operation, message string) *InvariantViolationError {
	return &InvariantViolationError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s.%s: %s", component, operation, message)},
		Component:   component,
		Operation:   operation,
	}
}

// Capacity errors

type CapacityError struct {
	*DomainError
	Requested float64
	Available float64
}

func NewCapacityError(what string, requested, available float64) *CapacityError {
	return &CapacityError{
		DomainError: &DomainError{Message: fmt.Sprintf("insufficient %s: need %.3f, have %.3f", what, requested, available)},
		Requested:   requested,
		Available:   available,
	}
}

type NotFoundError struct {
	*DomainError
	Kind string
	ID   string
}

func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s %s not found", kind, id)},
		Kind:        kind,
		ID:          id,
	}
}
