package domain

import (
	"errors"
	"time"
)

// User is the core account entity. LastLoginAt is nil until the first
// successful sign-in; it anchors the session validity window.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Telephones   []Telephone
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// Telephone is a phone number owned by exactly one user. Rows are deleted
// with their owner.
type Telephone struct {
	ID     string
	UserID string
	Number string
}

// MaxTelephoneLen bounds the stored number string.
const MaxTelephoneLen = 20

// MaxNameLen bounds the display name.
const MaxNameLen = 255

// Validate validates the user for persistence. Returns an error describing
// the first validation failure.
func (u *User) Validate() error {
	if u.ID == "" {
		return errors.New("id is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Name == "" {
		return errors.New("name is required")
	}
	if len(u.Name) > MaxNameLen {
		return errors.New("name too long")
	}
	for _, tel := range u.Telephones {
		if tel.Number == "" {
			return errors.New("telephone number is required")
		}
		if len(tel.Number) > MaxTelephoneLen {
			return errors.New("telephone number too long")
		}
	}
	return nil
}
