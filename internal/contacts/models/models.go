package models

import (
	"time"

	id "contactbook/pkg/domain"
)

// Contact is a personal record owned by exactly one account. Only the month
// and day of BirthDate take part in birthday matching.
type Contact struct {
	ID        id.ContactID
	UserID    id.UserID
	Name      string
	LastName  string
	Email     string
	Phone     string
	BirthDate time.Time
}

// Fields are the mutable attributes of a contact. Create and Update always
// carry the full set.
type Fields struct {
	Name      string
	LastName  string
	Email     string
	Phone     string
	BirthDate time.Time
}

// NewContact builds a contact owned by userID with a fresh id.
func NewContact(userID id.UserID, f Fields) *Contact {
	c := &Contact{ID: id.NewContactID(), UserID: userID}
	c.Apply(f)
	return c
}

// Apply replaces every mutable field.
func (c *Contact) Apply(f Fields) {
	c.Name = f.Name
	c.LastName = f.LastName
	c.Email = f.Email
	c.Phone = f.Phone
	c.BirthDate = DateOnly(f.BirthDate)
}

// DateOnly drops the time of day so stored dates compare equal across stores.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Filter narrows a contact listing. Nil fields are ignored; present fields
// must match exactly.
type Filter struct {
	Name     *string
	LastName *string
	Email    *string
}

// FilterField is one present filter term.
type FilterField struct {
	Column string
	Value  string
}

// Fields folds the present filters into column/value pairs in a fixed order.
func (f Filter) Fields() []FilterField {
	var out []FilterField
	if f.Name != nil {
		out = append(out, FilterField{Column: "name", Value: *f.Name})
	}
	if f.LastName != nil {
		out = append(out, FilterField{Column: "last_name", Value: *f.LastName})
	}
	if f.Email != nil {
		out = append(out, FilterField{Column: "email", Value: *f.Email})
	}
	return out
}

// Matches reports whether c satisfies every present filter.
func (f Filter) Matches(c *Contact) bool {
	for _, term := range f.Fields() {
		var got string
		switch term.Column {
		case "name":
			got = c.Name
		case "last_name":
			got = c.LastName
		case "email":
			got = c.Email
		}
		if got != term.Value {
			return false
		}
	}
	return true
}
