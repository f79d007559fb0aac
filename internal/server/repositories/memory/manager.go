// Package memory is an in-process implementation of the repository manager.
// It backs the server when no database DSN is configured and is used by the
// service tests.
//
// A transaction holds a store-wide lock for its whole duration and restores a
// snapshot of the store when it fails, so transactions are serializable.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/verificationtokens"
)

var errNoSQL = errors.New("memory store does not execute SQL")

type store struct {
	accounts      map[string]models.Account
	emails        map[string]string
	verifications map[string]models.VerificationToken
	refresh       map[string]models.RefreshToken
}

func newStore() *store {
	return &store{
		accounts:      map[string]models.Account{},
		emails:        map[string]string{},
		verifications: map[string]models.VerificationToken{},
		refresh:       map[string]models.RefreshToken{},
	}
}

func (s *store) clone() *store {
	c := newStore()
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.emails {
		c.emails[k] = v
	}
	for k, v := range s.verifications {
		c.verifications[k] = v
	}
	for k, v := range s.refresh {
		c.refresh[k] = v
	}
	return c
}

// Manager implements repomanager.RepositoryManager in memory.
type Manager struct {
	mu  sync.Mutex
	st  *store
	now func() time.Time
}

var _ repomanager.RepositoryManager = (*Manager)(nil)

func NewManager() *Manager {
	return &Manager{st: newStore(), now: time.Now}
}

// txHandle is the DBTX passed to transaction functions. It only marks the
// caller as holding the store lock; SQL methods always fail.
type txHandle struct {
	m    *Manager
	done bool
}

func (h *txHandle) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errNoSQL
}

func (h *txHandle) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errNoSQL
}

func (h *txHandle) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

// DB returns a DBTX for use outside transactions. Each repository call made
// with it locks the store for that call only.
func (m *Manager) DB() dbx.DBTX {
	return &txHandle{done: true}
}

func (m *Manager) Accounts(db dbx.DBTX) accounts.Repository {
	return &accountRepo{m: m, db: db}
}

func (m *Manager) VerificationTokens(db dbx.DBTX) verificationtokens.Repository {
	return &verificationRepo{m: m, db: db}
}

func (m *Manager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return &refreshRepo{m: m, db: db}
}

func (m *Manager) RunInTx(ctx context.Context, fn repomanager.TxFunc) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.st.clone()
	h := &txHandle{m: m}

	defer func() {
		h.done = true
		if p := recover(); p != nil {
			m.st = snapshot
			panic(p)
		}
		if err != nil {
			m.st = snapshot
		}
	}()

	if err = ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, h)
}

func (m *Manager) RunMigrations(context.Context) error {
	return nil
}

// with runs f against the store. Calls made through the handle of a running
// transaction already hold the lock; any other handle locks for the call.
func (m *Manager) with(db dbx.DBTX, f func(st *store) error) error {
	if h, ok := db.(*txHandle); ok && h.m == m && !h.done {
		return f(m.st)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return f(m.st)
}
