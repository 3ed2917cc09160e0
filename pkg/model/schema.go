// Package model implements the generic entity layer: an observable,
// copy-on-write wrapper around an immutable data record that loads lazily
// from a store, validates before saving, and reports property changes.
package model

import (
	"context"

	"trackcore/pkg/domain"
)

// Schema describes one record type to the model layer. Implementations are
// stateless and declare their property list as constants, so no reflection
// is involved in diffing or validation.
type Schema[R domain.Record] interface {
	// Entity names the record type.
	Entity() domain.EntityType
	// Properties lists the observable properties in declaration order.
	Properties() []domain.Property
	// New returns the default record for a fresh model.
	New() R
	// WithIdentity returns rec with its identity replaced by id.
	WithIdentity(rec R, id domain.Identity) R
	// Duplicate returns an independent deep copy of rec.
	Duplicate(rec R) R
	// Equal reports structural equality.
	Equal(a, b R) bool
	// Diff returns the properties whose value differs between old and next,
	// in declaration order.
	Diff(old, next R) []domain.Property
	// Validate returns the field-level failures of rec. Nil means valid.
	Validate(rec R) []domain.Failure
}

// Store is the persistence contract consumed by Model. Load returns an error
// matching domain.ErrNotFound when no record exists for id.
type Store[R domain.Record] interface {
	Load(ctx context.Context, id domain.Identity) (R, error)
	Save(ctx context.Context, rec R) error
}

// Entity is implemented by anything a Relation may point at: a comparable
// handle with a stable identity, typically a typed *Model wrapper.
type Entity interface {
	comparable
	ID() domain.Identity
}
