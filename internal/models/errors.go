package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error so callers can map it to a
// user-facing response without string matching.
type ErrorKind string

const (
	KindValidation        ErrorKind = "VALIDATION"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindInvalidState      ErrorKind = "INVALID_STATE"
	KindInvalidTransition ErrorKind = "INVALID_TRANSITION"
	KindConflict          ErrorKind = "CONFLICT"
	KindConfiguration     ErrorKind = "CONFIGURATION"
)

// DomainError is the error type surfaced by the order/ticket/turnover
// core. Entity and EntityID carry enough context to render a message.
type DomainError struct {
	Kind     ErrorKind `json:"kind"`
	Entity   string    `json:"entity,omitempty"`
	EntityID string    `json:"entity_id,omitempty"`
	Message  string    `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Entity != "" && e.EntityID != "" {
		return fmt.Sprintf("%s: %s %s: %s", e.Kind, e.Entity, e.EntityID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewValidationError reports bad input shape or range
func NewValidationError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError reports a referenced entity that does not exist
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Kind: KindNotFound, Entity: entity, EntityID: id, Message: "not found"}
}

// NewInvalidStateError reports an operation not permitted for the
// entity's current status
func NewInvalidStateError(entity, id, message string) *DomainError {
	return &DomainError{Kind: KindInvalidState, Entity: entity, EntityID: id, Message: message}
}

// NewInvalidTransitionError reports an illegal status transition
func NewInvalidTransitionError(entity, id string, from, to fmt.Stringer) *DomainError {
	return &DomainError{
		Kind:     KindInvalidTransition,
		Entity:   entity,
		EntityID: id,
		Message:  fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewConflictError reports a concurrent collision or uniqueness violation
func NewConflictError(entity, id, message string) *DomainError {
	return &DomainError{Kind: KindConflict, Entity: entity, EntityID: id, Message: message}
}

// NewConfigurationError reports a missing required mapping
func NewConfigurationError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is (or wraps) a DomainError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}
