package cache

import (
	"github.com/dmitrijs2005/vaultkeeper/internal/client/hub"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
)

// View is one collection of one snapshot, as delivered to list screens.
type View[T any] struct {
	Seq    uint64
	Scope  models.Scope
	Loaded bool
	Items  []T
}

func (v View[T]) Sequence() uint64 { return v.Seq }

// Subscribe follows every snapshot, starting with the current one.
func (c *Cache) Subscribe() *hub.Subscription[*Snapshot] {
	return c.feed.Subscribe()
}

// SubscribeVault follows the (non-trashed) vault list under f.
func (c *Cache) SubscribeVault(f VaultFilter) *hub.Subscription[View[models.ListItem]] {
	return hub.Map(c.feed.Subscribe(), func(s *Snapshot) View[models.ListItem] {
		return View[models.ListItem]{
			Seq: s.seq, Scope: s.scope, Loaded: s.Loaded(models.CollectionVault), Items: s.Filter(f),
		}
	})
}

func (c *Cache) SubscribeOrganizations() *hub.Subscription[View[models.OrganizationSummary]] {
	return hub.Map(c.feed.Subscribe(), func(s *Snapshot) View[models.OrganizationSummary] {
		return View[models.OrganizationSummary]{
			Seq: s.seq, Scope: s.scope, Loaded: s.Loaded(models.CollectionOrganizations), Items: s.Organizations(),
		}
	})
}

func (c *Cache) SubscribeSends() *hub.Subscription[View[models.SendSummary]] {
	return hub.Map(c.feed.Subscribe(), func(s *Snapshot) View[models.SendSummary] {
		return View[models.SendSummary]{
			Seq: s.seq, Scope: s.scope, Loaded: s.Loaded(models.CollectionSends), Items: s.Sends(),
		}
	})
}

// SubscribeSearch re-runs query against every new snapshot.
func (c *Cache) SubscribeSearch(query string, scope SearchScope) *hub.Subscription[Results] {
	return hub.Map(c.feed.Subscribe(), func(s *Snapshot) Results {
		return s.Search(query, scope)
	})
}

func (c *Cache) SubscribeSummary(f VaultFilter) *hub.Subscription[Summary] {
	return hub.Map(c.feed.Subscribe(), func(s *Snapshot) Summary {
		return s.Summarize(f)
	})
}
