package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/services"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	log         logging.Logger
	reader      *bufio.Reader
	out         io.Writer

	mu    sync.RWMutex
	email string
	Mode  Mode
}

// NewApp opens the local session store, dials the server lazily and wires
// the auth service. userAgent is sent with every call.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger, userAgent string) (*App, error) {

	db, err := client.OpenLocalStore(ctx, c.SessionFile)
	if err != nil {
		return nil, fmt.Errorf("error initializing session store: %w", err)
	}

	apiClient, err := client.NewAuthClient(c.ServerEndpointAddr, userAgent)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config:      c,
		authService: services.NewAuthService(apiClient, db),
		log:         l,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connection mode changed", "mode", mode)
	}
}

func (a *App) setEmail(email string) {
	a.mu.Lock()
	a.email = email
	a.mu.Unlock()
}

func (a *App) isLoggedIn() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.email != ""
}

// withTimeout bounds a single command's round trip to the server.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

// Run restores a saved session, if any, and blocks in the REPL until the
// user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.authService.Close(ctx)

	if s, err := a.authService.Restore(ctx); err == nil {
		a.setEmail(s.Email)
	} else if !errors.Is(err, client.ErrNotLoggedIn) {
		a.log.Warn(ctx, "could not restore session", "error", err)
	}

	a.Root(ctx)
}

// StartOnlineStatusWatcher pings the server every interval and flips Mode
// accordingly until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
