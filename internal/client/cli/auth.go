package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for name, email and password and creates the account.
// The server mails a verification token; the account cannot log in until
// it is passed to verify.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	account, err := a.authService.Register(ctx, name, email, password)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Registered %s. Check your inbox for the verification token.", account.Email))
	return nil
}

func (a *App) Verify(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter verification token", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.VerifyEmail(ctx, token); err != nil {
		return err
	}

	printlnFn("Email verified, you can log in now.")
	return nil
}

// Login prompts for credentials and, on success, keeps the session for
// later runs.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	account, err := a.authService.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.setEmail(account.Email)
	printlnFn(fmt.Sprintf("Welcome, %s!", account.Name))
	return nil
}

func (a *App) Me(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	account, err := a.authService.Me(ctx)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("%s <%s> role=%s verified=%t id=%s",
		account.Name, account.Email, account.Role, account.IsVerified, account.ID))
	return nil
}

// Logout ends the session. The local copy is gone even if the returned
// error says the server could not be told.
func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	err := a.authService.Logout(ctx)
	a.setEmail("")
	if err != nil {
		return err
	}

	printlnFn("Logged out.")
	return nil
}

func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.ForgotPassword(ctx, email); err != nil {
		return err
	}

	printlnFn("If your email is registered, you will receive a password reset token.")
	return nil
}

// ResetPassword redeems a reset token. All sessions of the account, this
// one included, stop working afterwards.
func (a *App) ResetPassword(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter reset token", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.ResetPassword(ctx, token, password); err != nil {
		return err
	}

	if a.isLoggedIn() {
		if err := a.authService.Logout(ctx); err != nil {
			a.log.Debug(ctx, "dropping revoked session", "error", err)
		}
		a.setEmail("")
	}

	printlnFn("Password has been reset. Please log in again.")
	return nil
}
