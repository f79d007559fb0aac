package cli

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	err      error
	calls    []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}
func (f *fakeExec) Register(context.Context) error { return f.record("register") }
func (f *fakeExec) Verify(context.Context) error   { return f.record("verify") }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Me(context.Context) error { return f.record("me") }
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) ForgotPassword(context.Context) error { return f.record("forgot") }
func (f *fakeExec) ResetPassword(context.Context) error  { return f.record("reset") }

func reader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	captureOutput(t)
	f := &fakeExec{}

	runREPL(context.Background(), f, func() string { return "" },
		reader("register\nverify\n\nlogin\nwhoami\nme\nlogout\nforgot\nreset\nexit\nlogin\n"))

	assert.Equal(t, []string{"register", "verify", "login", "me", "me", "logout", "forgot", "reset"}, f.calls)
}

func TestRunREPL_HelpDependsOnLoginState(t *testing.T) {
	out := captureOutput(t)
	f := &fakeExec{}

	runREPL(context.Background(), f, func() string { return "s" }, reader("help\nlogin\nhelp\nquit\n"))

	assert.Contains(t, *out, "Available commands: register, verify, login, forgot, reset, exit")
	assert.Contains(t, *out, "Available commands: whoami, logout, exit")
	assert.Contains(t, *out, "ga s> ")
}

func TestRunREPL_UnknownCommandAndErrors(t *testing.T) {
	out := captureOutput(t)
	f := &fakeExec{err: errors.New("boom")}

	runREPL(context.Background(), f, func() string { return "" }, reader("dance\nlogin"))

	assert.Contains(t, *out, "Unknown command: dance")
	assert.Contains(t, *out, "Error: boom")
	assert.Equal(t, []string{"login"}, f.calls, "last line without newline still runs")
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	captureOutput(t)
	f := &fakeExec{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runREPL(ctx, f, func() string { return "" }, reader("login\n"))
	assert.Empty(t, f.calls)
}
