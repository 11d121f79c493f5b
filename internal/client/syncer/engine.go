// Package syncer refreshes the cache of the active account from the
// remote service.
//
// Each Sync fetches vault items, organizations and sends concurrently and
// replaces every collection that arrived; a failed collection keeps its
// previous contents and is reported in a *PartialSyncFailure. Concurrent
// Sync calls for the same account scope share one run. Switching the active
// account cancels the run of the previous scope, and the cache rejects any
// late write that still gets through.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/accounts"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/cache"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/client"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/common"
	"github.com/dmitrijs2005/vaultkeeper/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

type Trigger int

const (
	TriggerManual Trigger = iota
	TriggerAutomatic
)

func (t Trigger) String() string {
	if t == TriggerAutomatic {
		return "automatic"
	}
	return "manual"
}

// Accounts is the part of the account store the engine depends on.
type Accounts interface {
	Scope() (models.Scope, error)
	OnSwitch(fn accounts.SwitchListener)
}

type Engine struct {
	accounts  Accounts
	cache     *cache.Cache
	transport client.Transport
	log       logging.Logger

	fetchTimeout time.Duration

	flights singleflight.Group

	mu       sync.Mutex
	inflight map[models.Scope]context.CancelFunc
}

type Option func(*Engine)

// WithFetchTimeout bounds every remote fetch. Zero means no bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(e *Engine) { e.fetchTimeout = d }
}

// New wires the engine to the account store: every switch of the active
// account cancels the run of the previous scope and rebinds the cache.
func New(store Accounts, c *cache.Cache, transport client.Transport, log logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		accounts:  store,
		cache:     c,
		transport: transport,
		log:       log,
		inflight:  make(map[models.Scope]context.CancelFunc),
	}
	for _, o := range opts {
		o(e)
	}

	store.OnSwitch(e.onSwitch)
	if scope, err := store.Scope(); err == nil {
		c.Bind(scope)
	}
	return e
}

func (e *Engine) onSwitch(from, to models.Scope) {
	e.cancel(from)
	e.cache.Bind(to)
}

func (e *Engine) cancel(scope models.Scope) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cancel, ok := e.inflight[scope]; ok {
		cancel()
		delete(e.inflight, scope)
	}
}

// Sync refreshes the active account. A call that arrives while a run for the
// same scope is in flight waits for that run and returns its result.
// Cancelling ctx stops the wait; the shared run continues until it
// finishes or the account is switched away.
func (e *Engine) Sync(ctx context.Context, trigger Trigger) error {
	scope, err := e.accounts.Scope()
	if err != nil {
		return err
	}

	base := context.WithoutCancel(ctx)
	ch := e.flights.DoChan(scope.String(), func() (any, error) {
		return nil, e.run(base, scope, trigger)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) track(parent context.Context, scope models.Scope) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	e.mu.Lock()
	e.inflight[scope] = cancel
	e.mu.Unlock()

	return ctx, func() {
		cancel()
		e.mu.Lock()
		delete(e.inflight, scope)
		e.mu.Unlock()
	}
}

func (e *Engine) run(parent context.Context, scope models.Scope, trigger Trigger) error {
	ctx, done := e.track(parent, scope)
	defer done()

	log := e.log.With("sync_id", uuid.NewString(), "scope", scope.String(), "trigger", trigger.String())

	// the account may have been switched away before the run was tracked
	if current, err := e.accounts.Scope(); err != nil || current != scope {
		return fmt.Errorf("sync %s: %w", scope, context.Canceled)
	}

	started := time.Now()
	log.Debug(ctx, "sync started")

	var (
		mu       sync.Mutex
		failures = make(map[models.Collection]error)
	)
	record := func(c models.Collection, err error) {
		mu.Lock()
		failures[c] = err
		mu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		raw, err := fetch(ctx, e.fetchTimeout, scope.UserID, e.transport.FetchVaultItems)
		if err == nil {
			_, err = e.cache.ReplaceItems(scope, toItems(raw))
		}
		if err != nil {
			record(models.CollectionVault, err)
		}
	}()
	go func() {
		defer wg.Done()
		raw, err := fetch(ctx, e.fetchTimeout, scope.UserID, e.transport.FetchOrganizations)
		if err == nil {
			_, err = e.cache.ReplaceOrganizations(scope, toOrganizations(raw))
		}
		if err != nil {
			record(models.CollectionOrganizations, err)
		}
	}()
	go func() {
		defer wg.Done()
		raw, err := fetch(ctx, e.fetchTimeout, scope.UserID, e.transport.FetchSends)
		if err == nil {
			_, err = e.cache.ReplaceSends(scope, toSends(raw))
		}
		if err != nil {
			record(models.CollectionSends, err)
		}
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		log.Info(ctx, "sync cancelled", "elapsed", time.Since(started))
		return fmt.Errorf("sync %s: %w", scope, err)
	}

	if len(failures) > 0 {
		pf := &PartialSyncFailure{Scope: scope, Failures: failures}
		log.Warn(ctx, "sync finished with failures", "failed", pf.Failed(), "error", pf.Error(), "elapsed", time.Since(started))
		return pf
	}

	log.Info(ctx, "sync finished", "seq", e.cache.Current().Sequence(), "elapsed", time.Since(started))
	return nil
}

func fetch[T any](ctx context.Context, timeout time.Duration, userID string, f func(context.Context, string) ([]T, error)) ([]T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return f(ctx, userID)
}

// SyncFunc runs one sync, e.g. Engine.Sync or a wrapper that persists its
// result.
type SyncFunc func(ctx context.Context, trigger Trigger) error

// Every calls syncFn with TriggerAutomatic every interval until ctx is done.
// Failures are logged and left to the next tick.
func Every(ctx context.Context, interval time.Duration, log logging.Logger, syncFn SyncFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := syncFn(ctx, TriggerAutomatic)
			switch {
			case err == nil, errors.Is(err, common.ErrNoActiveAccount), errors.Is(err, context.Canceled):
			default:
				log.Warn(ctx, "automatic sync failed", "error", err)
			}
		}
	}
}

// Close cancels every run in flight.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for scope, cancel := range e.inflight {
		cancel()
		delete(e.inflight, scope)
	}
}
