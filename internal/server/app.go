// Package server wires configuration, storage, the authentication engine and
// the HTTP and gRPC endpoints into one process, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/taskauth/internal/logging"
	"github.com/dmitrijs2005/taskauth/internal/server/auth"
	"github.com/dmitrijs2005/taskauth/internal/server/config"
	"github.com/dmitrijs2005/taskauth/internal/server/httpapi"
	"github.com/dmitrijs2005/taskauth/internal/server/metrics"
	"github.com/dmitrijs2005/taskauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskauth/internal/server/services"

	gs "github.com/dmitrijs2005/taskauth/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	metrics     *metrics.Metrics
	tokens      *auth.TokenManager
	userService *services.UserService
}

// NewApp validates c, opens and migrates the database and builds the services.
// It fails fast on a missing signing secret.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, err := logging.NewJSONLogger(logOut, c.LogLevel)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenManager([]byte(c.SecretKey))
	if err != nil {
		return nil, err
	}

	db, rm, err := repomanager.Open(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	m := metrics.New()
	us, err := services.NewUserService(db, rm, tokens, c, logger, m)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{config: c, logger: logger, db: db, metrics: m, tokens: tokens, userService: us}, nil
}

// shutdownSignals stop Run.
var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}

// Run serves HTTP and, when configured, gRPC until ctx is cancelled, a signal
// arrives or a server fails. The database is closed before returning.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	defer stop()
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	router := httpapi.NewRouter(app.userService, app.tokens, app.logger, app.metrics)
	httpServer := httpapi.NewHTTPServer(app.config.HTTPAddr, router, app.logger, app.config.ShutdownTimeout)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				app.logger.Error(ctx, name+" server failed", "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				cancelFunc()
			}
		}()
	}

	run("http", httpServer.Run)
	if app.config.GRPCAddr != "" {
		grpcServer := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.tokens, app.metrics)
		run("grpc", grpcServer.Run)
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("db close: %w", err))
	}
	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
	return errors.Join(errs...)
}
