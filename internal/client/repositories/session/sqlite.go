// Package session persists the CLI login session in the local SQLite store.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
)

const (
	keyEmail        = "email"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// Repository stores at most one session.
type Repository interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Clear(ctx context.Context) error
}

// SQLiteRepository keeps the session as key/value rows of the session table.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set session[%s]: %w", key, err)
	}
	return nil
}

// Load returns the stored session, or (nil, nil) when nobody is logged in.
func (r *SQLiteRepository) Load(ctx context.Context) (*models.Session, error) {
	refresh, err := r.get(ctx, keyRefreshToken)
	if err != nil {
		return nil, err
	}
	if refresh == "" {
		return nil, nil
	}

	s := &models.Session{RefreshToken: refresh}
	if s.Email, err = r.get(ctx, keyEmail); err != nil {
		return nil, err
	}
	if s.AccessToken, err = r.get(ctx, keyAccessToken); err != nil {
		return nil, err
	}
	return s, nil
}

// Save overwrites the stored session. Callers wanting atomicity pass a
// transaction as the repository handle.
func (r *SQLiteRepository) Save(ctx context.Context, s *models.Session) error {
	for _, kv := range [][2]string{
		{keyEmail, s.Email},
		{keyAccessToken, s.AccessToken},
		{keyRefreshToken, s.RefreshToken},
	} {
		if err := r.set(ctx, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
