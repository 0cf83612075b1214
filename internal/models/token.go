package models

import "time"

// TokenClaims is the part of the remote API's bearer token the front-end reads.
// It is decoded without signature verification and is advisory apart from ExpiresAt.
type TokenClaims struct {
	UserID    int64     `json:"userId,omitempty"`
	Username  string    `json:"username,omitempty"`
	ExpiresAt time.Time `json:"exp"`
}

// Expired reports whether the claims are no longer live at now.
// An expiry equal to now counts as expired.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// Credential is what a browser session holds after login or verification.
type Credential struct {
	Token    string
	Username string
}
