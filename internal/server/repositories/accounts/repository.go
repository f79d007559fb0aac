// Package accounts declares the account directory: the persistent set of
// registered users keyed by id and by unique email.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository stores accounts. Lookups of absent rows return
// common.ErrorNotFound; inserting a taken email returns
// common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// LockByID reads an account and holds its row until the surrounding
	// transaction ends.
	LockByID(ctx context.Context, id string) (*models.Account, error)
	MarkVerified(ctx context.Context, id string) error
	UpdatePasswordHash(ctx context.Context, id string, hash string) error
}
