package cache

import (
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/common"
)

// Entities is a full set of collections, as persisted or restored.
type Entities struct {
	Items         []models.ListItem            `json:"items"`
	Organizations []models.OrganizationSummary `json:"organizations"`
	Sends         []models.SendSummary         `json:"sends"`
}

// Snapshot is an immutable view of every cached collection of one account
// scope. A new Snapshot is built for every change; existing ones are never
// modified, so a reader holding one always sees a consistent state.
type Snapshot struct {
	seq   uint64
	scope models.Scope

	items []models.ListItem
	orgs  []models.OrganizationSummary
	sends []models.SendSummary

	itemIndex map[string]int
	sendIndex map[string]int

	loaded map[models.Collection]bool
}

func emptySnapshot(seq uint64, scope models.Scope) *Snapshot {
	return &Snapshot{
		seq:       seq,
		scope:     scope,
		itemIndex: map[string]int{},
		sendIndex: map[string]int{},
		loaded:    map[models.Collection]bool{},
	}
}

// next returns a shallow copy with a new sequence number. Collections are
// shared with s until replaced.
func (s *Snapshot) next(seq uint64) *Snapshot {
	n := *s
	n.seq = seq
	n.loaded = make(map[models.Collection]bool, len(s.loaded)+1)
	for k, v := range s.loaded {
		n.loaded[k] = v
	}
	return &n
}

func (s *Snapshot) setItems(items []models.ListItem) {
	s.items, s.itemIndex = normalize(items, func(i models.ListItem) (time.Time, string) { return i.RevisionDate, i.ID })
	s.loaded[models.CollectionVault] = true
}

func (s *Snapshot) setOrganizations(orgs []models.OrganizationSummary) {
	s.orgs, _ = normalize(orgs, func(o models.OrganizationSummary) (time.Time, string) { return o.RevisionDate, o.ID })
	s.loaded[models.CollectionOrganizations] = true
}

func (s *Snapshot) setSends(sends []models.SendSummary) {
	s.sends, s.sendIndex = normalize(sends, func(o models.SendSummary) (time.Time, string) { return o.RevisionDate, o.ID })
	s.loaded[models.CollectionSends] = true
}

// normalize sorts by revision (newest first, then id) and drops repeated
// ids, keeping the newest revision.
func normalize[T any](in []T, key func(T) (time.Time, string)) ([]T, map[string]int) {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b T) int {
		ar, aid := key(a)
		br, bid := key(b)
		return models.CompareByRevision(ar, aid, br, bid)
	})

	index := make(map[string]int, len(out))
	dedup := out[:0]
	for _, v := range out {
		_, id := key(v)
		if _, seen := index[id]; seen {
			continue
		}
		index[id] = len(dedup)
		dedup = append(dedup, v)
	}
	return dedup, index
}

func (s *Snapshot) Sequence() uint64    { return s.seq }
func (s *Snapshot) Scope() models.Scope { return s.scope }

// Empty reports whether no collection has been loaded for the scope yet.
func (s *Snapshot) Empty() bool { return len(s.loaded) == 0 }

// Loaded reports whether c has been filled at least once in this scope.
func (s *Snapshot) Loaded(c models.Collection) bool { return s.loaded[c] }

func (s *Snapshot) Items() []models.ListItem { return slices.Clone(s.items) }

func (s *Snapshot) Organizations() []models.OrganizationSummary { return slices.Clone(s.orgs) }

func (s *Snapshot) Sends() []models.SendSummary { return slices.Clone(s.sends) }

func (s *Snapshot) Entities() Entities {
	return Entities{Items: s.Items(), Organizations: s.Organizations(), Sends: s.Sends()}
}

// Item looks up a vault item by id.
func (s *Snapshot) Item(id string) (models.ListItem, error) {
	i, ok := s.itemIndex[id]
	if !ok {
		return models.ListItem{}, common.ErrNotFound
	}
	return s.items[i], nil
}

// Send looks up a send by id.
func (s *Snapshot) Send(id string) (models.SendSummary, error) {
	i, ok := s.sendIndex[id]
	if !ok {
		return models.SendSummary{}, common.ErrNotFound
	}
	return s.sends[i], nil
}

type SearchScope int

const (
	SearchVault SearchScope = iota
	SearchOrganizations
	SearchSends
)

func (s SearchScope) String() string {
	switch s {
	case SearchVault:
		return "vault"
	case SearchOrganizations:
		return "organizations"
	case SearchSends:
		return "sends"
	default:
		return "unknown"
	}
}

// Results holds the matches of one search against one snapshot. Only the
// slice belonging to Scope is populated.
type Results struct {
	Seq           uint64
	Query         string
	Scope         SearchScope
	Items         []models.ListItem
	Organizations []models.OrganizationSummary
	Sends         []models.SendSummary
}

func (r Results) Sequence() uint64 { return r.Seq }

// Len is the number of matches in the searched scope.
func (r Results) Len() int { return len(r.Items) + len(r.Organizations) + len(r.Sends) }

// Search does a case-insensitive substring match over item names and
// subtitles (or send/organization names). A blank query matches nothing.
// Trashed items are not searchable. Matches keep snapshot order.
func (s *Snapshot) Search(query string, scope SearchScope) Results {
	res := Results{Seq: s.seq, Query: query, Scope: scope}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return res
	}

	switch scope {
	case SearchVault:
		for _, it := range s.items {
			if !it.Deleted() && it.Matches(q) {
				res.Items = append(res.Items, it)
			}
		}
	case SearchOrganizations:
		for _, o := range s.orgs {
			if o.Matches(q) {
				res.Organizations = append(res.Organizations, o)
			}
		}
	case SearchSends:
		for _, sd := range s.sends {
			if sd.Matches(q) {
				res.Sends = append(res.Sends, sd)
			}
		}
	}
	return res
}
