// Package apperr defines the error taxonomy shared by every domain package.
//
// Domain functions wrap these with fmt.Errorf("pkg: op: %w", err) so callers
// can both read a contextual message and classify the failure with errors.As.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Kinds reported by Kind and used as machine-readable codes on the wire.
const (
	KindValidation  = "validation"
	KindNotFound    = "not_found"
	KindTransition  = "invalid_state_transition"
	KindPersistence = "persistence"
	KindUnknown     = "unknown"
)

// ValidationError means an input violated a field constraint.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Field, e.Reason)
}

// NotFoundError means a referenced id does not exist.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Entity, e.ID)
}

// InvalidStateTransition means a lifecycle status change is not permitted.
type InvalidStateTransition struct {
	Entity string
	ID     uint
	From   string
	To     string
}

func (e *InvalidStateTransition) Error() string {
	return fmt.Sprintf("%s %d: invalid status transition from %q to %q", e.Entity, e.ID, e.From, e.To)
}

// PersistenceError wraps a storage failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Invalid builds a ValidationError.
func Invalid(entity, field, reason string) error {
	return &ValidationError{Entity: entity, Field: field, Reason: reason}
}

// NotFound builds a NotFoundError.
func NotFound(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// Transition builds an InvalidStateTransition.
func Transition(entity string, id uint, from, to string) error {
	return &InvalidStateTransition{Entity: entity, ID: id, From: from, To: to}
}

// Storage classifies a gorm error: record-not-found becomes a NotFoundError
// for entity/id, everything else a PersistenceError for op.
func Storage(op, entity string, id any, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(entity, id)
	}
	return &PersistenceError{Op: op, Err: err}
}

// Persistence wraps err as a PersistenceError for op.
func Persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsInvalidTransition reports whether err carries an InvalidStateTransition.
func IsInvalidTransition(err error) bool {
	var target *InvalidStateTransition
	return errors.As(err, &target)
}

// IsPersistence reports whether err carries a PersistenceError.
func IsPersistence(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}

// Kind returns the taxonomy kind of err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return KindValidation
	case IsNotFound(err):
		return KindNotFound
	case IsInvalidTransition(err):
		return KindTransition
	case IsPersistence(err):
		return KindPersistence
	default:
		return KindUnknown
	}
}

// HTTPStatus maps err to the status code the HTTP surface responds with.
func HTTPStatus(err error) int {
	switch Kind(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
