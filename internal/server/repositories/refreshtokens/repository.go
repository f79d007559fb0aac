// Package refreshtokens declares the server-side repository contract for
// persisted refresh tokens (login sessions).
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository defines operations for issuing, retrieving and revoking refresh tokens.
// Tokens are addressed by the digest of their plaintext.
type Repository interface {
	// Create stores a new refresh token.
	Create(ctx context.Context, t *models.RefreshToken) error

	// Find returns the token with the given digest, or common.ErrorNotFound.
	Find(ctx context.Context, tokenHash string) (*models.RefreshToken, error)

	// Revoke flips a non-revoked token to revoked and reports whether it did.
	// Revoking an already revoked or absent token changes nothing.
	Revoke(ctx context.Context, tokenHash string, at time.Time) (bool, error)

	// RevokeAllForUser revokes every live token of userID and returns how many
	// rows changed.
	RevokeAllForUser(ctx context.Context, userID string, at time.Time) (int64, error)
}
