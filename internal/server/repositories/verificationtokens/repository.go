// Package verificationtokens stores single-use email verification and
// password reset tokens by digest.
package verificationtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository keeps at most one token per (user, type).
type Repository interface {
	// Upsert stores t, replacing any token the user already has of the same type.
	Upsert(ctx context.Context, t *models.VerificationToken) error

	// Consume deletes the token with the given digest when it is of tokenType
	// or already expired at now, and returns the deleted row. A live token of
	// another type is left alone. common.ErrorNotFound means nothing was deleted.
	Consume(ctx context.Context, tokenHash string, tokenType models.TokenType, now time.Time) (*models.VerificationToken, error)

	// Find returns the token with the given digest without changing it.
	Find(ctx context.Context, tokenHash string) (*models.VerificationToken, error)
}
