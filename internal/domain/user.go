package domain

import "time"

// Provider identifies how an account was created.
type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
)

// User represents an account known to the sign-on service.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	Provider     Provider
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether the account can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.Provider == ProviderLocal && u.PasswordHash != ""
}

// ExternalUser is the identity returned by an external provider after a code exchange.
type ExternalUser struct {
	Email    string
	FullName string
	Provider Provider
}
