package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// VerificationLedger issues and redeems single-use verification tokens.
// Plaintext tokens are returned to the caller once and stored only as a digest.
type VerificationLedger struct {
	repos repomanager.RepositoryManager
	now   func() time.Time
}

func NewVerificationLedger(m repomanager.RepositoryManager) *VerificationLedger {
	return &VerificationLedger{repos: m, now: time.Now}
}

// Issue creates a token of type t for userID valid for ttl. Any earlier token
// of the same type for that user stops being redeemable.
func (l *VerificationLedger) Issue(ctx context.Context, db dbx.DBTX, userID string, t models.TokenType, ttl time.Duration) (string, error) {
	token, err := auth.NewOpaqueToken()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	now := l.now()
	record := &models.VerificationToken{
		TokenHash: auth.DigestToken(token),
		UserID:    userID,
		Type:      t,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := l.repos.VerificationTokens(db).Upsert(ctx, record); err != nil {
		return "", fmt.Errorf("store %s token: %w", t, err)
	}

	return token, nil
}

// Redeem consumes token if it is live and of type t, returning its owner.
// An expired token is deleted as well but reported as not ok. A live token
// of another type is left in place.
func (l *VerificationLedger) Redeem(ctx context.Context, db dbx.DBTX, token string, t models.TokenType) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}

	now := l.now()
	record, err := l.repos.VerificationTokens(db).Consume(ctx, auth.DigestToken(token), t, now)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("consume %s token: %w", t, err)
	}

	if record.Type != t || record.Expired(now) {
		return "", false, nil
	}
	return record.UserID, true, nil
}
