package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/accounts"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/cache"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/client"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/config"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/repositories/blobs"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/services"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/syncer"
	"github.com/dmitrijs2005/vaultkeeper/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

// syncCanceller stops the syncs in flight on shutdown.
type syncCanceller interface {
	Close()
}

type App struct {
	config *config.Config
	log    logging.Logger
	auth   services.AuthService
	vault  services.VaultService
	engine syncCanceller

	closers []func() error

	reader *bufio.Reader
	out    io.Writer

	mu      sync.RWMutex
	mode    Mode
	summary cache.Summary
}

// NewApp builds the whole client from c and restores the persisted
// accounts. The returned App owns every resource it opened; call Close.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(os.Stderr, c.LogLevel)
	a := &App{config: c, log: log, reader: bufio.NewReader(os.Stdin), out: os.Stdout}

	repo, err := a.openRepository(ctx)
	if err != nil {
		return nil, err
	}

	store := accounts.NewStore(log)
	vc := cache.New(log)
	a.closers = append(a.closers, func() error { vc.Close(); return nil })

	api, err := client.NewGRPCClient(c.ServerEndpointAddr, store, log)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("error creating grpc client: %w", err)
	}
	a.closers = append(a.closers, api.Close)

	engine := syncer.New(store, vc, api, log)
	state := services.NewStateService(repo, log)

	a.engine = engine
	a.vault = services.NewVaultService(store, vc, engine, state, log)
	a.auth = services.NewAuthService(api, store, state, a.vault, log)

	if err := a.vault.Restore(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) openRepository(ctx context.Context) (blobs.Repository, error) {
	switch a.config.StorageBackend {
	case config.StorageRedis:
		rdb, err := blobs.ConnectRedis(ctx, a.config.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		return blobs.NewRedisRepository(rdb, blobs.DefaultRedisPrefix), nil
	default:
		db, err := client.InitDatabase(ctx, a.config.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("error initializing database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return blobs.NewSQLiteRepository(db), nil
	}
}

// Close stops in-flight syncs and releases resources in reverse order of
// acquisition.
func (a *App) Close() error {
	if a.engine != nil {
		a.engine.Close()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Run starts the background workers and the REPL. It returns once the user
// exits and every worker has stopped.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	printlnFn("Welcome to vaultkeeper (type 'help' for commands)")

	var wg sync.WaitGroup
	spawn := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	spawn(func() { a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval) })
	spawn(func() { a.followSummary(ctx) })
	if a.config.SyncInterval > 0 {
		spawn(func() { a.vault.Run(ctx, a.config.SyncInterval) })
	}

	if a.isLoggedIn() {
		spawn(func() {
			if err := a.vault.Sync(ctx, syncer.TriggerAutomatic); err != nil {
				a.log.Warn(ctx, "startup sync failed", "error", err)
			}
		})
	} else if err := a.Login(ctx); err != nil {
		a.log.Debug(ctx, "initial login skipped", "error", err)
	}

	runREPL(ctx, a, a.getStatus, a.reader)

	cancel()
	wg.Wait()
	return nil
}

func (a *App) isLoggedIn() bool {
	_, err := a.vault.ActiveAccount()
	return err == nil
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

// getStatus renders the prompt decoration: active email, connectivity and
// the live item count.
func (a *App) getStatus() string {
	var parts []string
	acct, err := a.vault.ActiveAccount()
	if err == nil {
		parts = append(parts, acct.Profile.Email)
	}

	a.mu.RLock()
	mode, sum := a.mode, a.summary
	a.mu.RUnlock()

	if mode != "" {
		parts = append(parts, string(mode))
	}
	if err == nil && sum.Seq > 0 {
		parts = append(parts, fmt.Sprintf("%d items", sum.Total))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// followSummary keeps the latest all-vaults summary for the prompt until
// ctx is done.
func (a *App) followSummary(ctx context.Context) {
	sub := a.vault.SubscribeSummary(cache.AllVaults())
	for s := range sub.All(ctx) {
		a.mu.Lock()
		a.summary = s
		a.mu.Unlock()
	}
}

// StartOnlineStatusWatcher pings the server every interval and flips Mode
// between online and offline. It blocks until ctx is done.
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
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := a.auth.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
