package models

import (
	"fmt"
	"strings"
	"time"
)

// User is an identity owning deposits, with an admin flag gating the
// registry and override operations. Emails are unique case-insensitively.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate performs basic validation on the User
func (u *User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("user email cannot be empty")
	}

	if u.PasswordHash == "" {
		return fmt.Errorf("user password hash cannot be empty")
	}

	return nil
}

// Clone returns an independent copy of the user
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// String returns a string representation of the User. The password hash is
// deliberately omitted.
func (u *User) String() string {
	return fmt.Sprintf("User{ID: %d, Email: %s, Admin: %t}", u.ID, u.Email, u.IsAdmin)
}
