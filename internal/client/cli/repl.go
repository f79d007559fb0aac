package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Verify(ctx context.Context) error
	Login(ctx context.Context) error
	Me(ctx context.Context) error
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop exits on EOF, on "exit" or "quit", or when ctx is cancelled.
//
//	Not logged in:
//	  - register       create an account
//	  - verify         confirm the email with the token from the message
//	  - login          authenticate
//	  - forgot         request a password reset message
//	  - reset          set a new password with the token from the message
//
//	Logged in:
//	  - whoami | me    show the current account
//	  - logout         revoke the session
//
// Errors returned by handlers are printed and the loop carries on. Prompts
// issued by handlers read from the same reader, so buffered input is never
// lost between the command line and its follow-up questions.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("ga %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, logout, exit")
			} else {
				printlnFn("Available commands: register, verify, login, forgot, reset, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "verify":
			cmdErr = a.Verify(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "whoami", "me":
			cmdErr = a.Me(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "forgot":
			cmdErr = a.ForgotPassword(ctx)

		case "reset":
			cmdErr = a.ResetPassword(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
