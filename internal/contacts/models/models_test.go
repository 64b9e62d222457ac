package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "contactbook/pkg/domain"
)

func ptr(s string) *string { return &s }

func TestFilterFields(t *testing.T) {
	assert.Empty(t, Filter{}.Fields())

	f := Filter{Email: ptr("a@example.com"), Name: ptr("Ann")}
	assert.Equal(t, []FilterField{
		{Column: "name", Value: "Ann"},
		{Column: "email", Value: "a@example.com"},
	}, f.Fields())
}

func TestFilterMatches(t *testing.T) {
	c := NewContact(id.NewUserID(), Fields{
		Name:     "Anna",
		LastName: "Smith",
		Email:    "anna@example.com",
	})

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"no filters", Filter{}, true},
		{"exact name", Filter{Name: ptr("Anna")}, true},
		{"prefix is not a match", Filter{Name: ptr("Ann")}, false},
		{"case sensitive", Filter{Name: ptr("anna")}, false},
		{"all fields", Filter{Name: ptr("Anna"), LastName: ptr("Smith"), Email: ptr("anna@example.com")}, true},
		{"one field off", Filter{Name: ptr("Anna"), LastName: ptr("Smyth")}, false},
		{"empty string is a real filter", Filter{LastName: ptr("")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(c))
		})
	}
}

func TestNewContactNormalisesBirthDate(t *testing.T) {
	born := time.Date(1990, time.May, 17, 15, 4, 5, 0, time.FixedZone("X", 3600))
	c := NewContact(id.NewUserID(), Fields{BirthDate: born})
	assert.Equal(t, time.Date(1990, time.May, 17, 0, 0, 0, 0, time.UTC), c.BirthDate)
	assert.False(t, c.ID.IsNil())
}
