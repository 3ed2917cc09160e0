package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Identity is the opaque unique key of a persisted record. The zero value is
// the empty identity carried by records that have never been saved.
type Identity struct {
	uuid uuid.UUID
}

// NewIdentity returns a fresh random identity.
func NewIdentity() Identity {
	return Identity{uuid: uuid.New()}
}

// ParseIdentity parses the canonical textual form of an identity. The empty
// string parses to the empty identity.
func ParseIdentity(s string) (Identity, error) {
	if s == "" {
		return Identity{}, nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return Identity{}, fmt.Errorf("parse identity %q: %w", s, err)
	}
	return Identity{uuid: u}, nil
}

// MustParseIdentity is ParseIdentity for literals in tests and fixtures.
func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero reports whether the identity is empty.
func (id Identity) IsZero() bool { return id.uuid == uuid.Nil }

// String returns the canonical form, or "" for the empty identity.
func (id Identity) String() string {
	if id.IsZero() {
		return ""
	}
	return id.uuid.String()
}

// Bytes returns the 16 raw bytes of the identity.
func (id Identity) Bytes() []byte {
	b := id.uuid
	return b[:]
}

// MarshalText implements encoding.TextMarshaler so identities serialise as
// strings, including when used as map keys.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
