package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// captureOutput swaps printlnFn for a recorder.
func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

// stubInputs answers text prompts from texts in order and every password
// prompt with password.
func stubInputs(t *testing.T, password string, texts ...string) *[]string {
	t.Helper()
	var prompts []string
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		prompts = append(prompts, prompt)
		if len(texts) == 0 {
			return "", io.EOF
		}
		v := texts[0]
		texts = texts[1:]
		return v, nil
	}
	getPassword = func(prompt string, _ io.Writer) ([]byte, error) {
		prompts = append(prompts, prompt)
		return []byte(password), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
	return &prompts
}

type fakeAuth struct {
	regName, regEmail, regPass string
	regErr                     error

	verifyToken string
	verifyErr   error

	loginEmail, loginPass string
	loginAccount          *models.Account
	loginErr              error

	restoreSession *models.Session
	restoreErr     error

	meAccount *models.Account
	meErr     error

	logoutCalls int
	logoutErr   error

	forgotEmail string
	forgotErr   error

	resetToken, resetPass string
	resetErr              error

	pingErr     error
	closeCalled bool
}

func (f *fakeAuth) Register(_ context.Context, name, email string, password []byte) (*models.Account, error) {
	f.regName, f.regEmail, f.regPass = name, email, string(password)
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.Account{ID: "u1", Name: name, Email: email}, nil
}

func (f *fakeAuth) VerifyEmail(_ context.Context, token string) error {
	f.verifyToken = token
	return f.verifyErr
}

func (f *fakeAuth) Login(_ context.Context, email string, password []byte) (*models.Account, error) {
	f.loginEmail, f.loginPass = email, string(password)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginAccount, nil
}

func (f *fakeAuth) Restore(context.Context) (*models.Session, error) {
	if f.restoreErr != nil {
		return nil, f.restoreErr
	}
	if f.restoreSession == nil {
		return nil, client.ErrNotLoggedIn
	}
	return f.restoreSession, nil
}

func (f *fakeAuth) Me(context.Context) (*models.Account, error) { return f.meAccount, f.meErr }

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeAuth) ForgotPassword(_ context.Context, email string) error {
	f.forgotEmail = email
	return f.forgotErr
}

func (f *fakeAuth) ResetPassword(_ context.Context, token string, password []byte) error {
	f.resetToken, f.resetPass = token, string(password)
	return f.resetErr
}

func (f *fakeAuth) Ping(context.Context) error { return f.pingErr }

func (f *fakeAuth) Close(context.Context) error {
	f.closeCalled = true
	return nil
}

func newTestApp(f *fakeAuth) *App {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return &App{config: cfg, authService: f, log: logging.Discard(), out: io.Discard}
}
