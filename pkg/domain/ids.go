// Package domain holds the typed identifiers shared across bounded contexts.
//
// IDs are UUID newtypes so an account id can never be passed where a contact
// id is expected. Construct them with the Parse* functions at trust
// boundaries (path params, token claims); direct conversion skips validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "contactbook/pkg/domain-errors"
)

// UserID identifies an account. Every contact is owned by exactly one UserID.
type UserID uuid.UUID

// ContactID identifies a single contact record.
type ContactID uuid.UUID

// NewContactID returns a random contact identifier.
func NewContactID() ContactID { return ContactID(uuid.New()) }

// NewUserID returns a random account identifier.
func NewUserID() UserID { return UserID(uuid.New()) }

// ParseUserID parses an account id from external input.
//
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil UUID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParseContactID parses a contact id from external input.
//
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil UUID.
func ParseContactID(s string) (ContactID, error) {
	u, err := parseUUID(s, "contact id")
	if err != nil {
		return ContactID{}, err
	}
	return ContactID(u), nil
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	return u, nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the id is the zero value.
func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id ContactID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the id is the zero value.
func (id ContactID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
