package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// emailConstraint is the unique constraint on users.email.
const emailConstraint = "users_email_key"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts account. An empty ID is filled with a new UUID, an empty
// role defaults to user. Timestamps come from the database.
func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.Role == "" {
		account.Role = models.RoleUser
	}

	query :=
		`INSERT INTO users (id, name, email, role, is_verified, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Name, account.Email, string(account.Role), account.IsVerified, account.PasswordHash,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, emailConstraint) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

const selectAccount = `SELECT id, name, email, role, is_verified, password_hash, created_at, updated_at FROM users`

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, selectAccount+` WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, selectAccount+` WHERE email = $1`, email)
}

func (r *PostgresRepository) LockByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, selectAccount+` WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	a := &models.Account{}
	var role string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.Name, &a.Email, &role, &a.IsVerified, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	a.Role = models.Role(role)
	return a, nil
}

func (r *PostgresRepository) MarkVerified(ctx context.Context, id string) error {
	query :=
		`UPDATE users SET is_verified = TRUE, updated_at = NOW()
		 WHERE id = $1`

	return r.updateOne(ctx, query, id)
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id string, hash string) error {
	query :=
		`UPDATE users SET password_hash = $2, updated_at = NOW()
		 WHERE id = $1`

	return r.updateOne(ctx, query, id, hash)
}

func (r *PostgresRepository) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
