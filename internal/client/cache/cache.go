// Package cache holds the decrypted list projections of the active account
// as a chain of immutable, sequence-numbered snapshots.
//
// Writers replace a whole collection at a time under a single lock and swap
// in a new *Snapshot; readers only load the current pointer. Every write is
// checked against the bound account scope, so results fetched for an account
// that is no longer active are rejected with common.ErrScopeMismatch.
// Each new snapshot is broadcast to subscribers through a hub.Broadcaster.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/hub"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/common"
	"github.com/dmitrijs2005/vaultkeeper/internal/logging"
)

type Cache struct {
	mu      sync.RWMutex
	current *Snapshot
	feed    *hub.Broadcaster[*Snapshot]
	log     logging.Logger
}

// New returns an empty, unbound cache. The initial snapshot (sequence 0) is
// already published.
func New(log logging.Logger) *Cache {
	c := &Cache{
		current: emptySnapshot(0, models.Scope{}),
		feed:    hub.New[*Snapshot](),
		log:     log,
	}
	c.feed.Publish(c.current)
	return c
}

// Current returns the latest snapshot. The snapshot carries the scope it
// belongs to, so callers get account and data as one consistent pair.
func (c *Cache) Current() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *Cache) Scope() models.Scope { return c.Current().Scope() }

// Bind discards everything cached and starts an empty snapshot for scope.
// Called when the active account changes.
func (c *Cache) Bind(scope models.Scope) *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.current
	c.current = emptySnapshot(prev.seq+1, scope)
	c.feed.Publish(c.current)

	c.log.Debug(context.Background(), "cache bound", "from", prev.scope.String(), "to", scope.String(), "seq", c.current.seq)
	return c.current
}

// Invalidate drops to the empty, unbound state (logout of the active account).
func (c *Cache) Invalidate() *Snapshot {
	return c.Bind(models.Scope{})
}

func (c *Cache) ReplaceItems(scope models.Scope, items []models.ListItem) (*Snapshot, error) {
	return c.replace(scope, models.CollectionVault, func(s *Snapshot) { s.setItems(items) })
}

func (c *Cache) ReplaceOrganizations(scope models.Scope, orgs []models.OrganizationSummary) (*Snapshot, error) {
	return c.replace(scope, models.CollectionOrganizations, func(s *Snapshot) { s.setOrganizations(orgs) })
}

func (c *Cache) ReplaceSends(scope models.Scope, sends []models.SendSummary) (*Snapshot, error) {
	return c.replace(scope, models.CollectionSends, func(s *Snapshot) { s.setSends(sends) })
}

// ReplaceSnapshot swaps in all collections at once, e.g. when restoring the
// last known good state from disk.
func (c *Cache) ReplaceSnapshot(scope models.Scope, e Entities) (*Snapshot, error) {
	return c.replace(scope, "all", func(s *Snapshot) {
		s.setItems(e.Items)
		s.setOrganizations(e.Organizations)
		s.setSends(e.Sends)
	})
}

func (c *Cache) replace(scope models.Scope, what models.Collection, fill func(*Snapshot)) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if scope.IsZero() || scope != c.current.scope {
		return nil, fmt.Errorf("replace %s for %s (bound %s): %w", what, scope, c.current.scope, common.ErrScopeMismatch)
	}

	next := c.current.next(c.current.seq + 1)
	fill(next)
	c.current = next
	c.feed.Publish(next)

	c.log.Debug(context.Background(), "snapshot replaced", "collection", string(what), "scope", scope.String(), "seq", next.seq)
	return next, nil
}

// Get looks up a vault item in the current snapshot.
func (c *Cache) Get(id string) (models.ListItem, error) {
	return c.Current().Item(id)
}

func (c *Cache) GetSend(id string) (models.SendSummary, error) {
	return c.Current().Send(id)
}

func (c *Cache) Search(query string, scope SearchScope) Results {
	return c.Current().Search(query, scope)
}

func (c *Cache) Filter(f VaultFilter) []models.ListItem {
	return c.Current().Filter(f)
}

func (c *Cache) Summarize(f VaultFilter) Summary {
	return c.Current().Summarize(f)
}

// Close ends all subscriptions.
func (c *Cache) Close() {
	c.feed.Close()
}

// Pair returns the bound scope and its snapshot from a single read, so the
// two always belong together.
func (c *Cache) Pair() (models.Scope, *Snapshot) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.scope, c.current
}
