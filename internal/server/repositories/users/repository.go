// Package users declares the server-side repository contract for identity
// records.
package users

import (
	"context"

	"github.com/avolkov/authkeeper/internal/server/models"
)

// Repository defines the storage operations on user records. Implementations
// return common.ErrorNotFound for missing rows and common.ErrorAlreadyExists
// on username/email collisions.
type Repository interface {
	// Create inserts a new user and returns it with storage-assigned timestamps.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByLogin looks up a user by username or email.
	GetByLogin(ctx context.Context, login string) (*models.User, error)

	// GetByID looks up a user by primary key.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// Lock takes a row-level lock on the user for the duration of the
	// surrounding transaction. Session mutations (login, refresh, logout)
	// lock the owner row first so they run serially per user; locking the
	// token rows alone cannot serialize the case where none exist yet.
	Lock(ctx context.Context, id string) error

	// Update persists the full mutable field set of the given user.
	Update(ctx context.Context, user *models.User) (*models.User, error)

	// Delete removes a user row permanently.
	Delete(ctx context.Context, id string) error
}
