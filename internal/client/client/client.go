package client

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

// Client is the remote side of the CLI: one method per server operation
// plus the token pair it carries between calls.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Register(ctx context.Context, name, email, password string) (*models.Account, error)
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, email, password string) (*models.Account, error)
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Me(ctx context.Context) (*models.Account, error)
	SetTokens(accessToken, refreshToken string)
	Tokens() (accessToken, refreshToken string)
}
