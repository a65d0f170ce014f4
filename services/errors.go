package services

import (
	"fmt"
)

// Services report failures as distinct, inspectable kinds so the transport
// layer can map them to responses without string matching.

// ValidationError marks malformed or out-of-range input, caught before any
// write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError marks a uniqueness violation: duplicate email, duplicate
// coach assignment, duplicate registration, duplicate roster entry.
type ConflictError struct {
	Resource string
	Message  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Resource, e.Message)
}

func conflictErr(resource, message string) error {
	return &ConflictError{Resource: resource, Message: message}
}

// NotFoundError marks a referenced entity that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func notFoundErr(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// CapacityError marks a registration attempt against a full event.
type CapacityError struct {
	EventID  string
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("event %s is full (capacity %d)", e.EventID, e.Capacity)
}

// TransientError wraps a transaction-level failure (serialization conflict,
// deadlock) that survived the internal retries. A caller retry might succeed.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient storage failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }
