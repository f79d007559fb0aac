// Package services contains server-side business logic. AuthService drives
// the account lifecycle: registration, email verification, login, access
// token refresh, logout and password reset.
package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/notify"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// Operation names used as metric labels.
const (
	OpRegister             = "register"
	OpVerifyEmail          = "verify_email"
	OpAuthenticate         = "authenticate"
	OpRefresh              = "refresh"
	OpLogout               = "logout"
	OpRequestPasswordReset = "request_password_reset"
	OpResetPassword        = "reset_password"
	OpMe                   = "me"
)

// Dependencies are the collaborators of AuthService. Metrics and Logger may be
// nil.
type Dependencies struct {
	Hasher   auth.PasswordHasher
	Issuer   auth.AccessTokenIssuer
	Notifier notify.Notifier
	Metrics  metrics.Recorder
	Logger   logging.Logger
}

type AuthService struct {
	repos         repomanager.RepositoryManager
	verifications *VerificationLedger
	sessions      *RefreshLedger

	hasher   auth.PasswordHasher
	issuer   auth.AccessTokenIssuer
	notifier notify.Notifier
	metrics  metrics.Recorder
	log      logging.Logger

	emailTokenTTL   time.Duration
	resetTokenTTL   time.Duration
	refreshTokenTTL time.Duration

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService constructs an AuthService using repositories, collaborators
// and server config.
func NewAuthService(m repomanager.RepositoryManager, d Dependencies, cfg *config.Config) *AuthService {
	rec := d.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}
	var log logging.Logger = logging.Discard()
	if d.Logger != nil {
		log = d.Logger
	}

	return &AuthService{
		repos:           m,
		verifications:   NewVerificationLedger(m),
		sessions:        NewRefreshLedger(m),
		hasher:          d.Hasher,
		issuer:          d.Issuer,
		notifier:        d.Notifier,
		metrics:         rec,
		log:             log.With("module", "auth"),
		emailTokenTTL:   cfg.EmailTokenValidityDuration,
		resetTokenTTL:   cfg.ResetTokenValidityDuration,
		refreshTokenTTL: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates an unverified account and emails it a verification link.
// A failed delivery does not fail the registration.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (_ *models.PublicAccount, err error) {
	defer s.observe(OpRegister, time.Now(), &err)

	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, s.internal(ctx, "hash password", err)
	}

	var (
		account *models.Account
		token   string
	)
	err = s.repos.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Accounts(tx)

		if _, err := repo.GetByEmail(ctx, email); err == nil {
			return common.ErrDuplicateEmail
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		created, err := repo.Create(ctx, &models.Account{
			Name:         name,
			Email:        email,
			Role:         models.RoleUser,
			PasswordHash: hash,
		})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.ErrDuplicateEmail
			}
			return err
		}
		account = created

		token, err = s.verifications.Issue(ctx, tx, created.ID, models.TokenTypeEmail, s.emailTokenTTL)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, s.internal(ctx, "register account", err)
	}

	s.log.Info(ctx, "account registered", "user_id", account.ID)

	if err := s.notifier.SendVerification(ctx, account.Email, account.Name, token); err != nil {
		s.deliveryFailed(ctx, notify.KindVerification, account.ID, err)
	}

	return account.Public(), nil
}

// VerifyEmail redeems an email verification token and marks its account
// verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (err error) {
	defer s.observe(OpVerifyEmail, time.Now(), &err)

	var userID string
	err = s.repos.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		id, ok, err := s.verifications.Redeem(ctx, tx, token, models.TokenTypeEmail)
		if err != nil {
			return err
		}
		if !ok {
			// commit so an expired record stays deleted
			return nil
		}
		if err := s.repos.Accounts(tx).MarkVerified(ctx, id); err != nil {
			return err
		}
		userID = id
		return nil
	})
	if err != nil {
		return s.internal(ctx, "verify email", err)
	}
	if userID == "" {
		return common.ErrInvalidOrExpiredToken
	}

	s.log.Info(ctx, "email verified", "user_id", userID)
	return nil
}

// Authenticate checks credentials and, for a verified account, returns an
// access token and a persisted refresh token bound to origin.
func (s *AuthService) Authenticate(ctx context.Context, email, password string, origin models.OriginInfo) (_ *models.LoginResult, err error) {
	defer s.observe(OpAuthenticate, time.Now(), &err)

	account, err := s.repos.Accounts(s.repos.DB()).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// same bcrypt work as for a known email
			s.hasher.Verify(password, s.dummyPasswordHash())
			return nil, common.ErrInvalidCredentials
		}
		return nil, s.internal(ctx, "lookup account", err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	if !account.IsVerified {
		return nil, common.ErrEmailNotVerified
	}

	access, err := s.accessToken(account)
	if err != nil {
		return nil, s.internal(ctx, "issue access token", err, "user_id", account.ID)
	}

	// The hash is checked again under the row lock, so a session cannot be
	// created after a concurrent password reset has revoked the others.
	var refresh string
	err = s.repos.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		current, err := s.repos.Accounts(tx).LockByID(ctx, account.ID)
		if err != nil {
			return err
		}
		if current.PasswordHash != account.PasswordHash {
			return common.ErrInvalidCredentials
		}
		refresh, err = s.sessions.Issue(ctx, tx, account.ID, s.refreshTokenTTL, origin)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			return nil, err
		}
		return nil, s.internal(ctx, "issue refresh token", err, "user_id", account.ID)
	}

	s.log.Info(ctx, "login succeeded", "user_id", account.ID, "ip", origin.IPAddress)

	return &models.LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Account:      account.Public(),
	}, nil
}

// Refresh mints a new access token for a live refresh token. The refresh
// token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (_ *models.AccessTokenResult, err error) {
	defer s.observe(OpRefresh, time.Now(), &err)

	v, err := s.sessions.Validate(ctx, s.repos.DB(), refreshToken)
	if err != nil {
		return nil, s.internal(ctx, "validate refresh token", err)
	}
	if !v.Valid {
		return nil, common.ErrInvalidOrExpiredToken
	}

	account, err := s.repos.Accounts(s.repos.DB()).GetByID(ctx, v.UserID)
	if err != nil {
		return nil, s.internal(ctx, "lookup account", err, "user_id", v.UserID)
	}

	access, err := s.accessToken(account)
	if err != nil {
		return nil, s.internal(ctx, "issue access token", err, "user_id", account.ID)
	}
	return &models.AccessTokenResult{AccessToken: access}, nil
}

// Logout revokes refreshToken. Unknown and already revoked tokens are not an
// error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) (err error) {
	defer s.observe(OpLogout, time.Now(), &err)

	found, err := s.sessions.Revoke(ctx, s.repos.DB(), refreshToken)
	if err != nil {
		return s.internal(ctx, "revoke refresh token", err)
	}
	if found {
		s.log.Info(ctx, "logged out")
	}
	return nil
}

// RequestPasswordReset emails a reset link if email belongs to an account.
// The result is the same whether or not it does.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (err error) {
	defer s.observe(OpRequestPasswordReset, time.Now(), &err)

	account, err := s.repos.Accounts(s.repos.DB()).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Debug(ctx, "password reset requested for unknown email")
			return nil
		}
		return s.internal(ctx, "lookup account", err)
	}

	token, err := s.verifications.Issue(ctx, s.repos.DB(), account.ID, models.TokenTypePasswordReset, s.resetTokenTTL)
	if err != nil {
		s.log.Error(ctx, "password reset token not stored", "user_id", account.ID, "error", err)
		return nil
	}

	if err := s.notifier.SendPasswordReset(ctx, account.Email, account.Name, token); err != nil {
		s.deliveryFailed(ctx, notify.KindPasswordReset, account.ID, err)
		return nil
	}

	s.log.Info(ctx, "password reset requested", "user_id", account.ID)
	return nil
}

// ResetPassword redeems a password reset token, replaces the account's
// password and revokes all of its refresh tokens.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (err error) {
	defer s.observe(OpResetPassword, time.Now(), &err)

	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return s.internal(ctx, "hash password", err)
	}

	var (
		userID  string
		revoked int64
	)
	err = s.repos.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		id, ok, err := s.verifications.Redeem(ctx, tx, token, models.TokenTypePasswordReset)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := s.repos.Accounts(tx).UpdatePasswordHash(ctx, id, hash); err != nil {
			return err
		}
		n, err := s.sessions.RevokeAll(ctx, tx, id)
		if err != nil {
			return err
		}
		userID, revoked = id, n
		return nil
	})
	if err != nil {
		return s.internal(ctx, "reset password", err)
	}
	if userID == "" {
		return common.ErrInvalidOrExpiredToken
	}

	s.metrics.RecordTokensRevoked(int(revoked))
	s.log.Info(ctx, "password reset", "user_id", userID, "sessions_revoked", revoked)
	return nil
}

// Me returns the account an access token was issued to.
func (s *AuthService) Me(ctx context.Context, accessToken string) (_ *models.PublicAccount, err error) {
	defer s.observe(OpMe, time.Now(), &err)

	claims, err := s.issuer.Parse(accessToken)
	if err != nil {
		return nil, err
	}

	account, err := s.repos.Accounts(s.repos.DB()).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, s.internal(ctx, "lookup account", err, "user_id", claims.UserID)
	}
	return account.Public(), nil
}

// --- helpers below ---

func (s *AuthService) accessToken(a *models.Account) (string, error) {
	return s.issuer.Issue(auth.Claims{UserID: a.ID, Email: a.Email, Role: a.Role})
}

// dummyPasswordHash is compared against when the email is unknown.
func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		secret, err := common.MakeRandURLString(24)
		if err != nil {
			return
		}
		s.dummyHash, _ = s.hasher.Hash(secret)
	})
	return s.dummyHash
}

func (s *AuthService) deliveryFailed(ctx context.Context, kind notify.Kind, userID string, err error) {
	s.metrics.RecordNotificationFailure(string(kind))
	s.log.Error(ctx, "email delivery failed", "kind", kind, "user_id", userID, "error", err)
}

// internal logs err and hides it from the caller.
func (s *AuthService) internal(ctx context.Context, msg string, err error, args ...any) error {
	s.log.Error(ctx, msg, append(args, "error", err)...)
	return common.ErrorInternal
}

func (s *AuthService) observe(op string, start time.Time, err *error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case *err == nil:
	case errors.Is(*err, common.ErrorInternal):
		outcome = metrics.OutcomeError
	default:
		outcome = metrics.OutcomeFailure
	}
	s.metrics.RecordOperation(op, outcome, time.Since(start))
}
