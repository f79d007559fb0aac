package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token_hash, user_id, ip_address, user_agent, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		t.TokenHash, t.UserID, nullString(t.IPAddress), nullString(t.UserAgent), t.ExpiresAt, t.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	query := `
		SELECT user_id, ip_address, user_agent, revoked, revoked_at, expires_at, created_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`
	t := &models.RefreshToken{TokenHash: tokenHash}
	var ip, ua sql.NullString
	var revokedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&t.UserID, &ip, &ua, &t.Revoked, &revokedAt, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	t.IPAddress = ip.String
	t.UserAgent = ua.String
	if revokedAt.Valid {
		at := revokedAt.Time
		t.RevokedAt = &at
	}
	return t, nil
}

func (r *PostgresRepository) Revoke(ctx context.Context, tokenHash string, at time.Time) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = $2
		WHERE token_hash = $1 AND revoked = FALSE
	`
	n, err := r.exec(ctx, query, tokenHash, at)
	return n > 0, err
}

func (r *PostgresRepository) RevokeAllForUser(ctx context.Context, userID string, at time.Time) (int64, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = $2
		WHERE user_id = $1 AND revoked = FALSE
	`
	return r.exec(ctx, query, userID, at)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
