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

// Column limits for origin metadata.
const (
	maxIPAddressLen = 45
	maxUserAgentLen = 255
)

// RefreshValidation is the result of RefreshLedger.Validate.
type RefreshValidation struct {
	Valid  bool
	UserID string
}

// RefreshLedger manages persisted, revocable refresh tokens.
type RefreshLedger struct {
	repos repomanager.RepositoryManager
	now   func() time.Time
}

func NewRefreshLedger(m repomanager.RepositoryManager) *RefreshLedger {
	return &RefreshLedger{repos: m, now: time.Now}
}

// Issue stores a new refresh token for userID stamped with origin.
func (l *RefreshLedger) Issue(ctx context.Context, db dbx.DBTX, userID string, ttl time.Duration, origin models.OriginInfo) (string, error) {
	token, err := auth.NewOpaqueToken()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	now := l.now()
	record := &models.RefreshToken{
		TokenHash: auth.DigestToken(token),
		UserID:    userID,
		IPAddress: truncate(origin.IPAddress, maxIPAddressLen),
		UserAgent: truncate(origin.UserAgent, maxUserAgentLen),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := l.repos.RefreshTokens(db).Create(ctx, record); err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}

	return token, nil
}

// Validate reports whether token exists, is not revoked and has not expired.
func (l *RefreshLedger) Validate(ctx context.Context, db dbx.DBTX, token string) (RefreshValidation, error) {
	if token == "" {
		return RefreshValidation{}, nil
	}

	record, err := l.repos.RefreshTokens(db).Find(ctx, auth.DigestToken(token))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return RefreshValidation{}, nil
		}
		return RefreshValidation{}, fmt.Errorf("find refresh token: %w", err)
	}

	if record.Revoked || record.Expired(l.now()) {
		return RefreshValidation{UserID: record.UserID}, nil
	}
	return RefreshValidation{Valid: true, UserID: record.UserID}, nil
}

// Revoke marks token revoked and reports whether it exists. Revoking an
// already revoked token is a no-op.
func (l *RefreshLedger) Revoke(ctx context.Context, db dbx.DBTX, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	repo := l.repos.RefreshTokens(db)
	digest := auth.DigestToken(token)

	record, err := repo.Find(ctx, digest)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("find refresh token: %w", err)
	}
	if record.Revoked {
		return true, nil
	}

	if _, err := repo.Revoke(ctx, digest, l.now()); err != nil {
		return true, fmt.Errorf("revoke refresh token: %w", err)
	}
	return true, nil
}

// RevokeAll revokes every live refresh token of userID and returns how many
// were revoked.
func (l *RefreshLedger) RevokeAll(ctx context.Context, db dbx.DBTX, userID string) (int64, error) {
	n, err := l.repos.RefreshTokens(db).RevokeAllForUser(ctx, userID, l.now())
	if err != nil {
		return 0, fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return n, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
