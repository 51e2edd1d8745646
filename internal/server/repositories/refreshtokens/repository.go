// Package refreshtokens declares the server-side repository contract for
// refresh-token rows. Rows are append-only: revocation and logout flip flags,
// nothing is physically removed.
package refreshtokens

import (
	"context"
	"time"

	"github.com/avolkov/authkeeper/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh
// tokens. Callers doing read-then-write sequences (reuse-if-valid on login,
// rotation on refresh) must serialize per user by locking the owner's user
// row in the same transaction; GetValid and FindByValue additionally lock the
// matched token row.
type Repository interface {
	// Create stores a new refresh token row for userID with an expiry of
	// now+validity and returns it.
	Create(ctx context.Context, userID string, token string, validity time.Duration) (*models.RefreshToken, error)

	// GetValid returns the user's current non-revoked, non-deleted, unexpired
	// token, or common.ErrorNotFound if there is none.
	GetValid(ctx context.Context, userID string) (*models.RefreshToken, error)

	// FindByValue looks up a non-deleted token row by its opaque value.
	// Revoked and expired rows are still returned so the caller can tell
	// reuse apart from an unknown value.
	FindByValue(ctx context.Context, token string) (*models.RefreshToken, error)

	// Revoke sets is_revoked. Revoking an already-revoked token is not an
	// error.
	Revoke(ctx context.Context, id string) error

	// SoftDelete sets is_deleted, hiding the row from all future lookups.
	SoftDelete(ctx context.Context, id string) error
}
