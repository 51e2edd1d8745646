package models

import "time"

// RefreshToken is a persisted session credential. Token is an opaque random
// value handed to the client; it has no relation to the JWT signing key.
// Rows are never physically removed: revocation and logout only flip the
// IsRevoked/IsDeleted flags.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	IssuedAt  time.Time
	Expires   time.Time
	IsRevoked bool
	IsDeleted bool
}

// Expired reports whether the token's lifetime has passed.
func (t *RefreshToken) Expired() bool {
	return !t.Expires.After(time.Now())
}
