package memory

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

type accountRepo struct {
	m  *Manager
	db dbx.DBTX
}

func (r *accountRepo) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	err := r.m.with(r.db, func(st *store) error {
		if _, taken := st.emails[account.Email]; taken {
			return common.ErrorAlreadyExists
		}
		if account.ID == "" {
			account.ID = uuid.NewString()
		}
		if _, taken := st.accounts[account.ID]; taken {
			return common.ErrorAlreadyExists
		}
		if account.Role == "" {
			account.Role = models.RoleUser
		}
		now := r.m.now()
		account.CreatedAt = now
		account.UpdatedAt = now

		st.accounts[account.ID] = *account
		st.emails[account.Email] = account.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *accountRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var out models.Account
	err := r.m.with(r.db, func(st *store) error {
		a, ok := st.accounts[id]
		if !ok {
			return common.ErrorNotFound
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// LockByID is GetByID: a transaction already holds the whole store.
func (r *accountRepo) LockByID(ctx context.Context, id string) (*models.Account, error) {
	return r.GetByID(ctx, id)
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var out models.Account
	err := r.m.with(r.db, func(st *store) error {
		id, ok := st.emails[email]
		if !ok {
			return common.ErrorNotFound
		}
		out = st.accounts[id]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *accountRepo) MarkVerified(ctx context.Context, id string) error {
	return r.update(id, func(a *models.Account) { a.IsVerified = true })
}

func (r *accountRepo) UpdatePasswordHash(ctx context.Context, id string, hash string) error {
	return r.update(id, func(a *models.Account) { a.PasswordHash = hash })
}

func (r *accountRepo) update(id string, f func(a *models.Account)) error {
	return r.m.with(r.db, func(st *store) error {
		a, ok := st.accounts[id]
		if !ok {
			return common.ErrorNotFound
		}
		f(&a)
		a.UpdatedAt = r.m.now()
		st.accounts[id] = a
		return nil
	})
}
