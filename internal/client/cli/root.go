package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := ""
	if a.email != "" {
		s = a.email + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root greets the user, starts the connectivity watcher and hands control
// to the REPL.
func (a *App) Root(ctx context.Context) {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	printlnFn("Welcome to GophAuth CLI (type 'help' for commands)")

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
