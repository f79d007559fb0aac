package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type verificationRepo struct {
	m  *Manager
	db dbx.DBTX
}

func (r *verificationRepo) Upsert(ctx context.Context, t *models.VerificationToken) error {
	return r.m.with(r.db, func(st *store) error {
		for hash, existing := range st.verifications {
			if existing.UserID == t.UserID && existing.Type == t.Type {
				delete(st.verifications, hash)
			}
		}
		if _, taken := st.verifications[t.TokenHash]; taken {
			return common.ErrorAlreadyExists
		}
		st.verifications[t.TokenHash] = *t
		return nil
	})
}

func (r *verificationRepo) Consume(ctx context.Context, tokenHash string, tokenType models.TokenType, now time.Time) (*models.VerificationToken, error) {
	var out models.VerificationToken
	err := r.m.with(r.db, func(st *store) error {
		t, ok := st.verifications[tokenHash]
		if !ok || (t.Type != tokenType && !t.Expired(now)) {
			return common.ErrorNotFound
		}
		delete(st.verifications, tokenHash)
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *verificationRepo) Find(ctx context.Context, tokenHash string) (*models.VerificationToken, error) {
	var out models.VerificationToken
	err := r.m.with(r.db, func(st *store) error {
		t, ok := st.verifications[tokenHash]
		if !ok {
			return common.ErrorNotFound
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type refreshRepo struct {
	m  *Manager
	db dbx.DBTX
}

func (r *refreshRepo) Create(ctx context.Context, t *models.RefreshToken) error {
	return r.m.with(r.db, func(st *store) error {
		if _, taken := st.refresh[t.TokenHash]; taken {
			return common.ErrorAlreadyExists
		}
		st.refresh[t.TokenHash] = *t
		return nil
	})
}

func (r *refreshRepo) Find(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var out models.RefreshToken
	err := r.m.with(r.db, func(st *store) error {
		t, ok := st.refresh[tokenHash]
		if !ok {
			return common.ErrorNotFound
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *refreshRepo) Revoke(ctx context.Context, tokenHash string, at time.Time) (bool, error) {
	changed := false
	err := r.m.with(r.db, func(st *store) error {
		t, ok := st.refresh[tokenHash]
		if !ok || t.Revoked {
			return nil
		}
		revoke(&t, at)
		st.refresh[tokenHash] = t
		changed = true
		return nil
	})
	return changed, err
}

func (r *refreshRepo) RevokeAllForUser(ctx context.Context, userID string, at time.Time) (int64, error) {
	var n int64
	err := r.m.with(r.db, func(st *store) error {
		for hash, t := range st.refresh {
			if t.UserID != userID || t.Revoked {
				continue
			}
			revoke(&t, at)
			st.refresh[hash] = t
			n++
		}
		return nil
	})
	return n, err
}

func revoke(t *models.RefreshToken, at time.Time) {
	t.Revoked = true
	t.RevokedAt = &at
}
