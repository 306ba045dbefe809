// Package model defines the data structures used throughout the application.
package model

import "time"

// Provider values for User.Provider.
//
// An account is established exactly one way and keeps that tag forever:
// a "manual" account was self-registered with an email + password, an
// "oauth" account was provisioned on first Google sign-in. The tag decides
// whether a password hash must be present and whether an OAuth sign-in may
// attach to the account.
const (
	ProviderManual = "manual"
	ProviderOAuth  = "oauth"
)

// DefaultAvatar is used when an account has no profile picture.
const DefaultAvatar = "/Default.jpg"

// User represents a registered account.
//
// WHY PasswordHash string (not *string)?
// OAuth accounts have no password. We use the empty string as "no hash"
// rather than a nullable pointer — simpler to work with, and the invariant
// `hash present ⇔ provider == manual` is checked where it matters.
//
// ProviderID is the external identity assigned by Google (the OAuth account
// id). It is empty for manual accounts and unique when present, so one
// Google account maps to exactly one row even if the user changes their
// email on Google's side.
//
// PasswordHash and ProviderID never leave the server; `json:"-"` keeps them
// out of every API response.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Image        string    `json:"image"`
	Provider     string    `json:"provider"`
	ProviderID   string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
