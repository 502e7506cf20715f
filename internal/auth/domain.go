package auth

import "time"

// Account represents a login-capable user account.
type Account struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsDisabled   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
