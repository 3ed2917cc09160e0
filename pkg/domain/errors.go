package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrNotFound reports that the backing store has no record for an identity.
	ErrNotFound = errors.New("record not found")
	// ErrNotLoaded reports an operation that needs a record which has not been
	// loaded and may not be loaded implicitly.
	ErrNotLoaded = errors.New("record not loaded")
	// ErrValidation reports that a record failed pre-save validation.
	ErrValidation = errors.New("validation failed")
	// ErrUnsaved reports a relation assigned a related model that has no
	// identity yet. Save the related model first.
	ErrUnsaved = errors.New("related record has not been saved")
)

// Failure names one field that failed validation and why.
type Failure struct {
	Field  Property `json:"field"`
	Reason string   `json:"reason"`
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Reason)
}

// ValidationError is returned by Save when a record fails validation. The
// model is left unchanged.
type ValidationError struct {
	Entity   EntityType
	ID       Identity
	Failures []Failure
}

func (e ValidationError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.String())
	}
	subject := string(e.Entity)
	if !e.ID.IsZero() {
		subject += " " + e.ID.String()
	}
	return fmt.Sprintf("%s: validation failed: %s", subject, strings.Join(parts, "; "))
}

// Is matches ErrValidation.
func (e ValidationError) Is(target error) bool { return target == ErrValidation }

// HasField reports whether any failure names field.
func (e ValidationError) HasField(field Property) bool {
	for _, f := range e.Failures {
		if f.Field == field {
			return true
		}
	}
	return false
}

// NotFoundError reports a missing record of a given type.
type NotFoundError struct {
	Entity EntityType
	ID     Identity
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// Is matches ErrNotFound.
func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Operation names a store operation in StoreError.
type Operation string

// Store operations.
const (
	OpLoad Operation = "load"
	OpSave Operation = "save"
)

// StoreError wraps a failure reported by a persistence backend.
type StoreError struct {
	Op     Operation
	Entity EntityType
	ID     Identity
	Err    error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
}

func (e StoreError) Unwrap() error { return e.Err }
