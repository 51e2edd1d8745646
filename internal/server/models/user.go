// Package models holds the server-side domain records persisted by the
// repositories, plus the pure patch type applied to them.
package models

import "time"

// User is the identity record. Password holds the bcrypt hash, never the
// plaintext. IsAdmin gates administrative actions; IsActive is informational
// and may only be flipped by an admin.
type User struct {
	ID        string
	Username  string
	Email     string
	Password  string
	IsAdmin   bool
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
