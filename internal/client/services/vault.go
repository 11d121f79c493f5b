// Package services contains the application services of the vaultkeeper
// client: the vault facade used by the CLI, login, and persisted state.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/accounts"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/cache"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/hub"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/syncer"
	"github.com/dmitrijs2005/vaultkeeper/internal/common"
	"github.com/dmitrijs2005/vaultkeeper/internal/kdf"
	"github.com/dmitrijs2005/vaultkeeper/internal/logging"
)

// VaultService is what the user interface sees of the sync core.
//
// Subscriptions replay the current state first and then follow every cache
// change; callers must Cancel them. Sync, SetActive and Logout persist the
// result through StateService.
type VaultService interface {
	Subscribe() *hub.Subscription[*cache.Snapshot]
	SubscribeVault(f cache.VaultFilter) *hub.Subscription[cache.View[models.ListItem]]
	SubscribeOrganizations() *hub.Subscription[cache.View[models.OrganizationSummary]]
	SubscribeSends() *hub.Subscription[cache.View[models.SendSummary]]
	SubscribeSearch(query string, scope cache.SearchScope) *hub.Subscription[cache.Results]
	SubscribeSummary(f cache.VaultFilter) *hub.Subscription[cache.Summary]

	Search(query string, scope cache.SearchScope) cache.Results
	Get(id string) (models.ListItem, error)
	GetSend(id string) (models.SendSummary, error)
	Filter(f cache.VaultFilter) []models.ListItem
	Summarize(f cache.VaultFilter) cache.Summary
	Organizations() []models.OrganizationSummary
	Sends() []models.SendSummary

	Sync(ctx context.Context, trigger syncer.Trigger) error
	// Run issues persisted automatic syncs every interval until ctx is done.
	Run(ctx context.Context, interval time.Duration)
	SetActive(ctx context.Context, userID string) error
	AllAccounts() []models.Account
	ActiveAccount() (models.Account, error)
	Logout(ctx context.Context, userID string) error
	// Resolve returns the KDF configuration of the active account.
	Resolve() (kdf.Config, error)
	// Restore loads persisted accounts and reactivates the last active one.
	Restore(ctx context.Context) error
}

type vaultService struct {
	store  *accounts.Store
	cache  *cache.Cache
	engine *syncer.Engine
	state  StateService
	log    logging.Logger

	// persistMu orders sync persistence against logout so a removed
	// account is never written back.
	persistMu sync.Mutex
}

func NewVaultService(store *accounts.Store, c *cache.Cache, engine *syncer.Engine, state StateService, log logging.Logger) VaultService {
	return &vaultService{store: store, cache: c, engine: engine, state: state, log: log}
}

func (v *vaultService) Subscribe() *hub.Subscription[*cache.Snapshot] { return v.cache.Subscribe() }

func (v *vaultService) SubscribeVault(f cache.VaultFilter) *hub.Subscription[cache.View[models.ListItem]] {
	return v.cache.SubscribeVault(f)
}

func (v *vaultService) SubscribeOrganizations() *hub.Subscription[cache.View[models.OrganizationSummary]] {
	return v.cache.SubscribeOrganizations()
}

func (v *vaultService) SubscribeSends() *hub.Subscription[cache.View[models.SendSummary]] {
	return v.cache.SubscribeSends()
}

func (v *vaultService) SubscribeSearch(query string, scope cache.SearchScope) *hub.Subscription[cache.Results] {
	return v.cache.SubscribeSearch(query, scope)
}

func (v *vaultService) SubscribeSummary(f cache.VaultFilter) *hub.Subscription[cache.Summary] {
	return v.cache.SubscribeSummary(f)
}

func (v *vaultService) Search(query string, scope cache.SearchScope) cache.Results {
	return v.cache.Search(query, scope)
}

func (v *vaultService) Get(id string) (models.ListItem, error)        { return v.cache.Get(id) }
func (v *vaultService) GetSend(id string) (models.SendSummary, error) { return v.cache.GetSend(id) }
func (v *vaultService) Filter(f cache.VaultFilter) []models.ListItem  { return v.cache.Filter(f) }
func (v *vaultService) Summarize(f cache.VaultFilter) cache.Summary   { return v.cache.Summarize(f) }

func (v *vaultService) Organizations() []models.OrganizationSummary {
	return v.cache.Current().Organizations()
}

func (v *vaultService) Sends() []models.SendSummary { return v.cache.Current().Sends() }

func (v *vaultService) AllAccounts() []models.Account { return v.store.AllAccounts() }

func (v *vaultService) ActiveAccount() (models.Account, error) { return v.store.ActiveAccount() }

// Sync refreshes the active account and stores whatever the cache now holds,
// also after a partial failure: the cache is still the best known state.
func (v *vaultService) Sync(ctx context.Context, trigger syncer.Trigger) error {
	syncErr := v.engine.Sync(ctx, trigger)
	if syncErr != nil && !errors.Is(syncErr, common.ErrPartialSyncFailure) {
		return syncErr
	}

	if err := v.persist(ctx); err != nil {
		v.log.Error(ctx, "failed to persist sync result", "error", err)
	}
	return syncErr
}

func (v *vaultService) Run(ctx context.Context, interval time.Duration) {
	syncer.Every(ctx, interval, v.log, v.Sync)
}

// persist stores the account, whose tokens may have been refreshed during
// the sync, together with the snapshot of its scope.
func (v *vaultService) persist(ctx context.Context) error {
	v.persistMu.Lock()
	defer v.persistMu.Unlock()

	scope, snap := v.cache.Pair()
	if scope.IsZero() || snap.Empty() {
		return nil
	}

	a, err := v.store.Account(scope.UserID)
	if err != nil {
		v.log.Debug(ctx, "account gone, sync result not stored", "user_id", scope.UserID)
		return nil
	}
	return v.state.SaveSync(ctx, a, snap.Entities())
}

// SetActive switches accounts and shows the stored snapshot of the new
// account until its first sync completes.
func (v *vaultService) SetActive(ctx context.Context, userID string) error {
	if err := v.store.SetActive(userID); err != nil {
		return err
	}
	v.restoreSnapshot(ctx)

	if err := v.state.SaveActive(ctx, userID); err != nil {
		return fmt.Errorf("save active account: %w", err)
	}
	return nil
}

func (v *vaultService) restoreSnapshot(ctx context.Context) {
	scope, snap := v.cache.Pair()
	if scope.IsZero() || !snap.Empty() {
		return
	}

	e, ok, err := v.state.LoadSnapshot(ctx, scope.UserID)
	if err != nil {
		v.log.Warn(ctx, "failed to load stored snapshot", "user_id", scope.UserID, "error", err)
		return
	}
	if !ok {
		return
	}
	// a switch in the meantime makes this a scope mismatch, which is fine
	if _, err := v.cache.ReplaceSnapshot(scope, e); err != nil {
		v.log.Debug(ctx, "stored snapshot not applied", "error", err)
	}
}

func (v *vaultService) Logout(ctx context.Context, userID string) error {
	v.persistMu.Lock()
	defer v.persistMu.Unlock()

	active, _ := v.store.ActiveID()
	if err := v.store.Remove(userID); err != nil {
		return err
	}

	if err := v.state.DeleteAccount(ctx, userID); err != nil {
		return fmt.Errorf("delete stored account: %w", err)
	}
	if active == userID {
		if err := v.state.SaveActive(ctx, ""); err != nil {
			return fmt.Errorf("clear active account: %w", err)
		}
	}
	return nil
}

func (v *vaultService) Resolve() (kdf.Config, error) {
	a, err := v.store.ActiveAccount()
	if err != nil {
		return nil, err
	}
	return kdf.Resolve(a.Profile)
}

func (v *vaultService) Restore(ctx context.Context) error {
	st, err := v.state.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	for _, a := range st.Accounts {
		if err := v.store.AddOrUpdate(a); err != nil {
			v.log.Warn(ctx, "skipping stored account", "error", err)
		}
	}
	v.log.Info(ctx, "state restored", "accounts", len(st.Accounts), "active", st.ActiveID)

	if st.ActiveID == "" {
		return nil
	}
	if err := v.store.SetActive(st.ActiveID); err != nil {
		return err
	}
	v.restoreSnapshot(ctx)
	return nil
}
