// Package server wires the auth server together: storage, notifications,
// metrics, the gRPC endpoint and the ops HTTP endpoint, with graceful
// shutdown on context cancellation.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/notify"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	grpc    *gs.GRPCServer
	ops     *http.Server
	closers []func() error
}

// NewApp builds every component from c. Logs go to w. An empty DSN selects
// the in-memory store and an empty NATS URL the logging notifier.
func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {

	logger := logging.NewForEnv(c.Env, w)
	app := &App{config: c, logger: logger}

	repos, check, err := app.openStore(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	notifier, err := app.openNotifier(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	issuer := auth.NewJWTIssuer([]byte(c.SecretKey), c.Issuer, c.AccessTokenValidityDuration)
	svc := services.NewAuthService(repos, services.Dependencies{
		Hasher:   auth.NewBcryptHasher(c.BcryptCost),
		Issuer:   issuer,
		Notifier: notifier,
		Metrics:  metrics.NewCollector(reg),
		Logger:   logger,
	}, c)

	app.grpc = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, svc, issuer)
	app.ops = &http.Server{
		Addr:              c.EndpointAddrHTTP,
		Handler:           metrics.NewOpsRouter(reg, check),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return app, nil
}

func (app *App) openStore(ctx context.Context) (repomanager.RepositoryManager, metrics.HealthCheck, error) {
	if app.config.DatabaseDSN == "" {
		app.logger.Warn(ctx, "no database DSN configured, using in-memory store")
		return memory.NewManager(), nil, nil
	}

	db, err := sql.Open("pgx", app.config.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	app.closers = append(app.closers, db.Close)

	m, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}
	if err := m.RunMigrations(ctx); err != nil {
		return nil, nil, fmt.Errorf("db migrations error: %w", err)
	}

	return m, db.PingContext, nil
}

func (app *App) openNotifier(ctx context.Context) (notify.Notifier, error) {
	if app.config.NATSURL == "" {
		app.logger.Warn(ctx, "no NATS URL configured, notifications are only logged")
		return notify.NewLogNotifier(app.config.FrontendURL, app.logger), nil
	}

	nc, err := notify.Connect(app.config.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("nats connect error: %w", err)
	}
	app.closers = append(app.closers, func() error {
		nc.Close()
		return nil
	})

	return notify.NewNATSNotifier(nc, app.config.NotificationSubject, app.config.FrontendURL), nil
}

func (app *App) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Error(context.Background(), "close error", "error", err)
		}
	}
	app.closers = nil
}

// Run serves both endpoints until ctx is cancelled or one of them fails,
// then shuts the other down and releases resources.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.close()

	app.logger.Info(ctx, "Starting app...", "grpc", app.config.EndpointAddrGRPC, "http", app.config.EndpointAddrHTTP)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
		cancelFunc()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.grpc.Run(ctx); err != nil {
			app.logger.Error(ctx, "grpc server error", "error", err)
			fail(err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "ops server error", "error", err)
			fail(err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ops.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "ops server shutdown error", "error", err)
		}
	}()

	wg.Wait()
	app.logger.Info(context.Background(), "app stopped")

	return errors.Join(errs...)
}
