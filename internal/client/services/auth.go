// Package services contains application services for the GophAuth client.
// This file defines the authentication service: account lifecycle calls
// against the server plus the locally persisted login session.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/repositories/session"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
)

// AuthService defines authentication operations for the CLI.
//
// Login persists the token pair so that a later run can Restore it. Logout
// revokes the refresh token on the server and always wipes the local copy.
// Me may transparently refresh an expired access token; the new one is
// persisted as well.
type AuthService interface {
	Register(ctx context.Context, name, email string, password []byte) (*models.Account, error)
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, email string, password []byte) (*models.Account, error)
	Restore(ctx context.Context) (*models.Session, error)
	Me(ctx context.Context) (*models.Account, error)
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token string, newPassword []byte) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// authService is the concrete AuthService backed by a remote Client
// and a local SQL database for the session.
type authService struct {
	client client.Client
	db     *sql.DB
	email  string
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) getSessionRepo(db dbx.DBTX) session.Repository {
	return session.NewSQLiteRepository(db)
}

func (a *authService) Register(ctx context.Context, name, email string, password []byte) (*models.Account, error) {
	return a.client.Register(ctx, name, email, string(password))
}

func (a *authService) VerifyEmail(ctx context.Context, token string) error {
	return a.client.VerifyEmail(ctx, token)
}

// Login authenticates against the server and saves the issued tokens.
func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.Account, error) {
	account, err := a.client.Login(ctx, email, string(password))
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	a.email = email
	if err := a.saveSession(ctx); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return account, nil
}

func (a *authService) saveSession(ctx context.Context) error {
	access, refresh := a.client.Tokens()
	s := &models.Session{Email: a.email, AccessToken: access, RefreshToken: refresh}

	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return a.getSessionRepo(tx).Save(ctx, s)
	})
}

// Restore loads the session saved by a previous Login into the client. It
// returns client.ErrNotLoggedIn when there is none.
func (a *authService) Restore(ctx context.Context) (*models.Session, error) {
	s, err := a.getSessionRepo(a.db).Load(ctx)
	if err != nil {
		return nil, err
	}
	if s.Empty() {
		return nil, client.ErrNotLoggedIn
	}

	a.email = s.Email
	a.client.SetTokens(s.AccessToken, s.RefreshToken)
	return s, nil
}

func (a *authService) Me(ctx context.Context) (*models.Account, error) {
	before, _ := a.client.Tokens()

	account, err := a.client.Me(ctx)
	if err != nil {
		return nil, err
	}

	if after, _ := a.client.Tokens(); after != before {
		if err := a.saveSession(ctx); err != nil {
			return nil, fmt.Errorf("session saving error: %w", err)
		}
	}
	return account, nil
}

// Logout revokes the session on the server and clears it locally. The local
// copy is removed even if the server could not be reached.
func (a *authService) Logout(ctx context.Context) error {
	remoteErr := a.client.Logout(ctx)
	a.email = ""

	if err := a.getSessionRepo(a.db).Clear(ctx); err != nil {
		return errors.Join(remoteErr, err)
	}
	return remoteErr
}

func (a *authService) ForgotPassword(ctx context.Context, email string) error {
	return a.client.RequestPasswordReset(ctx, email)
}

func (a *authService) ResetPassword(ctx context.Context, token string, newPassword []byte) error {
	return a.client.ResetPassword(ctx, token, string(newPassword))
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases the client connection and the local store.
func (a *authService) Close(ctx context.Context) error {
	return errors.Join(a.client.Close(), a.db.Close())
}
