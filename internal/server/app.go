// Package server wires and runs the vaultkeeper development server: a gRPC
// endpoint that serves fixture accounts to the CLI.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/vaultkeeper/internal/logging"
	"github.com/dmitrijs2005/vaultkeeper/internal/server/config"
	"github.com/dmitrijs2005/vaultkeeper/internal/server/db"
	"github.com/dmitrijs2005/vaultkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/vaultkeeper/internal/server/users"

	gs "github.com/dmitrijs2005/vaultkeeper/internal/server/grpc"
)

// openPostgres is a seam for tests.
var openPostgres = db.OpenPostgres

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *users.Service
	db          *sql.DB
}

// NewApp loads the fixture and, when a DSN is configured, the PostgreSQL
// refresh token store. Refresh tokens stay in memory otherwise.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel)

	seed, err := users.LoadFixtureFile(c.FixturePath)
	if err != nil {
		return nil, fmt.Errorf("fixture load error: %w", err)
	}

	app := &App{config: c, logger: logger}

	var opts []users.Option
	if c.DatabaseDSN != "" {
		app.db, err = openPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("database init error: %w", err)
		}
		opts = append(opts, users.WithRefreshTokens(refreshtokens.NewPostgresRepository(app.db)))
		logger.Info(ctx, "refresh tokens stored in postgres")
	}

	app.userService, err = users.NewService(seed, users.TokenSettings{
		SecretKey:       []byte(c.SecretKey),
		AccessValidity:  c.AccessTokenValidityDuration,
		RefreshValidity: c.RefreshTokenValidityDuration,
	}, logger, opts...)
	if err != nil {
		return nil, errors.Join(err, app.Close())
	}

	logger.Info(ctx, "fixture loaded", "path", c.FixturePath, "users", len(seed))
	return app, nil
}

// Close releases the database, if any.
func (app *App) Close() error {
	if app.db == nil {
		return nil
	}
	err := app.db.Close()
	app.db = nil
	return err
}

// Run serves until ctx is done or SIGINT, SIGTERM or SIGQUIT arrives, then
// closes the App.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var wg sync.WaitGroup
	defer func() {
		stop()
		wg.Wait()
		if err := app.Close(); err != nil {
			app.logger.Error(context.Background(), "database close failed", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...")

	if every := app.config.RefreshTokenValidityDuration; every > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.purgeTokens(ctx, every)
		}()
	}

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, []byte(app.config.SecretKey))
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", "error", err)
		return err
	}
	return nil
}

func (app *App) purgeTokens(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := app.userService.PurgeExpiredTokens(ctx); err != nil {
				app.logger.Warn(ctx, "refresh token purge failed", "error", err)
			}
		}
	}
}
