package models

import (
	"time"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string // never serialized to clients
	Name         string
	DisplayName  *string
	PhoneNumber  string
	CountryCode  string
	Role         string // "user" or "admin"

	// Password reset state. Both set while a reset is pending, both nil at
	// rest. Only the SHA-256 hash of the token is ever persisted.
	PasswordResetTokenHash *string
	PasswordResetExpires   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one of the assignable roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// HasPendingReset reports whether a usable reset token is outstanding.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.PasswordResetTokenHash != nil &&
		u.PasswordResetExpires != nil &&
		u.PasswordResetExpires.After(now)
}
