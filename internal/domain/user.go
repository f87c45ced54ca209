package domain

import "time"

// User represents an account in the marketplace. Local accounts carry a
// password hash; accounts created through an external identity provider
// may have no local credential at all.
type User struct {
	ID           int64
	Username     string
	Email        string
	GoogleID     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasLocalCredential reports whether the user can log in with a password.
func (u *User) HasLocalCredential() bool {
	return u.PasswordHash != ""
}
