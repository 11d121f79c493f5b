package cache

import (
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
)

type FilterKind int

const (
	FilterAllVaults FilterKind = iota
	FilterMyVault
	FilterOrganization
)

// VaultFilter narrows the vault list to personal items, one organization,
// or everything.
type VaultFilter struct {
	Kind           FilterKind
	OrganizationID string
}

func AllVaults() VaultFilter { return VaultFilter{Kind: FilterAllVaults} }
func MyVault() VaultFilter   { return VaultFilter{Kind: FilterMyVault} }

func Organization(id string) VaultFilter {
	return VaultFilter{Kind: FilterOrganization, OrganizationID: id}
}

func (f VaultFilter) keep(it models.ListItem) bool {
	switch f.Kind {
	case FilterMyVault:
		return it.OrganizationID == ""
	case FilterOrganization:
		return it.OrganizationID == f.OrganizationID
	default:
		return true
	}
}

// Filter returns the non-trashed items visible under f.
func (s *Snapshot) Filter(f VaultFilter) []models.ListItem {
	out := make([]models.ListItem, 0, len(s.items))
	for _, it := range s.items {
		if !it.Deleted() && f.keep(it) {
			out = append(out, it)
		}
	}
	return out
}

type Group struct {
	Type  models.ItemType
	Count int
}

// Summary feeds the grouped vault list: per-type counts plus favorites and
// trash.
type Summary struct {
	Seq       uint64
	Groups    []Group
	Favorites int
	Trash     int
	Total     int
}

var groupOrder = []models.ItemType{
	models.ItemTypeLogin,
	models.ItemTypeCard,
	models.ItemTypeIdentity,
	models.ItemTypeSecureNote,
	models.ItemTypeSSHKey,
}

func (s *Snapshot) Summarize(f VaultFilter) Summary {
	counts := make(map[models.ItemType]int, len(groupOrder))
	sum := Summary{Seq: s.seq}
	for _, it := range s.items {
		if !f.keep(it) {
			continue
		}
		if it.Deleted() {
			sum.Trash++
			continue
		}
		counts[it.Type]++
		sum.Total++
		if it.Favorite {
			sum.Favorites++
		}
	}
	for _, t := range groupOrder {
		sum.Groups = append(sum.Groups, Group{Type: t, Count: counts[t]})
	}
	return sum
}

func (s Summary) Sequence() uint64 { return s.Seq }
