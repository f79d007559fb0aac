package verificationtokens

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

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, t *models.VerificationToken) error {
	query := `
		INSERT INTO verification_tokens (token_hash, user_id, token_type, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, token_type) DO UPDATE
		SET token_hash = EXCLUDED.token_hash,
		    expires_at = EXCLUDED.expires_at,
		    created_at = EXCLUDED.created_at
	`
	if _, err := r.db.ExecContext(ctx, query, t.TokenHash, t.UserID, string(t.Type), t.ExpiresAt, t.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Consume is a single conditional DELETE, so of two concurrent callers only
// one gets the row back.
func (r *PostgresRepository) Consume(ctx context.Context, tokenHash string, tokenType models.TokenType, now time.Time) (*models.VerificationToken, error) {
	query := `
		DELETE FROM verification_tokens
		WHERE token_hash = $1 AND (token_type = $2 OR expires_at <= $3)
		RETURNING user_id, token_type, expires_at, created_at
	`
	t := &models.VerificationToken{TokenHash: tokenHash}
	if err := r.scan(r.db.QueryRowContext(ctx, query, tokenHash, string(tokenType), now), t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PostgresRepository) Find(ctx context.Context, tokenHash string) (*models.VerificationToken, error) {
	query := `
		SELECT user_id, token_type, expires_at, created_at
		FROM verification_tokens
		WHERE token_hash = $1
	`
	t := &models.VerificationToken{TokenHash: tokenHash}
	if err := r.scan(r.db.QueryRowContext(ctx, query, tokenHash), t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PostgresRepository) scan(row *sql.Row, t *models.VerificationToken) error {
	var tokenType string
	if err := row.Scan(&t.UserID, &tokenType, &t.ExpiresAt, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	t.Type = models.TokenType(tokenType)
	return nil
}
