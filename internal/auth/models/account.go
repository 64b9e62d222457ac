package models

import (
	"time"

	id "contactbook/pkg/domain"
)

// Account is the authenticated identity that owns contacts. The contacts
// core only reads it; the avatar flow updates AvatarURL.
type Account struct {
	ID        id.UserID
	Email     string
	Username  string
	AvatarURL string
	CreatedAt time.Time
}

// NewAccount builds an account with a fresh id.
func NewAccount(email, username string, now time.Time) *Account {
	return &Account{
		ID:        id.NewUserID(),
		Email:     email,
		Username:  username,
		CreatedAt: now,
	}
}
