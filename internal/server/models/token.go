package models

import "time"

// TokenType is the purpose of a verification token.
type TokenType string

const (
	TokenTypeEmail         TokenType = "email"
	TokenTypePasswordReset TokenType = "password_reset"
)

// VerificationToken is a single-use token. TokenHash is the digest of the
// plaintext handed to the user; the plaintext itself is never stored.
type VerificationToken struct {
	TokenHash string
	UserID    string
	Type      TokenType
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t *VerificationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// RefreshToken is a persisted login session.
type RefreshToken struct {
	TokenHash string
	UserID    string
	IPAddress string
	UserAgent string
	Revoked   bool
	RevokedAt *time.Time
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// OriginInfo describes where a login came from.
type OriginInfo struct {
	IPAddress string
	UserAgent string
}
