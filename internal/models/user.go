package models

import (
	"time"
)

// Auth providers an account can originate from.
const (
	ProviderEmail     = "email"
	ProviderMicrosoft = "microsoft"
)

// DefaultPlanID is assigned to every newly created account.
const DefaultPlanID = "free"

// User is the identity record. IDs are generated UUIDs for password
// accounts and the provider subject id for OAuth accounts.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        *string    `json:"email"` // nullable for some OAuth flows
	PasswordHash *string    `json:"-"`     // nil for OAuth-only accounts
	OAuthID      *string    `json:"-"`
	Provider     string     `json:"provider"`
	PlanID       string     `json:"plan_id"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// HasPassword reports whether the account can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// EmailOrEmpty returns the email or "" when the account has none.
func (u *User) EmailOrEmpty() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}
