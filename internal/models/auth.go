package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token type claims, enforced on both issue and verify.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// AccessClaims is carried by the short-lived bearer token. Identity fields
// are a convenience snapshot; callers must re-read the user row for anything
// beyond identity.
type AccessClaims struct {
	Type     string `json:"type"`
	UserID   string `json:"user_id"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims carries only the user id. Refresh tokens mint new access
// tokens and nothing else.
type RefreshClaims struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
