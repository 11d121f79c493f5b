package models

import (
	"cmp"
	"strings"
	"time"
)

// Collection names one independently synced data set.
type Collection string

const (
	CollectionVault         Collection = "vault"
	CollectionOrganizations Collection = "organizations"
	CollectionSends         Collection = "sends"
)

// Collections lists every tracked collection in sync order.
var Collections = []Collection{CollectionVault, CollectionOrganizations, CollectionSends}

type ItemType string

const (
	ItemTypeLogin      ItemType = "login"
	ItemTypeCard       ItemType = "card"
	ItemTypeIdentity   ItemType = "identity"
	ItemTypeSecureNote ItemType = "secure_note"
	ItemTypeSSHKey     ItemType = "ssh_key"
)

// ListItem is the decrypted list projection of a vault item.
type ListItem struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organizationId,omitempty"`
	FolderID       string     `json:"folderId,omitempty"`
	Name           string     `json:"name"`
	Subtitle       string     `json:"subtitle,omitempty"`
	Type           ItemType   `json:"type"`
	Favorite       bool       `json:"favorite"`
	Edit           bool       `json:"edit"`
	ViewPassword   bool       `json:"viewPassword"`
	DeletedAt      *time.Time `json:"deletedDate,omitempty"`
	RevisionDate   time.Time  `json:"revisionDate"`
}

func (i ListItem) Deleted() bool { return i.DeletedAt != nil }

type OrganizationSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Enabled      bool      `json:"enabled"`
	RevisionDate time.Time `json:"revisionDate"`
}

type SendType string

const (
	SendTypeText SendType = "text"
	SendTypeFile SendType = "file"
)

type SendSummary struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Type           SendType   `json:"type"`
	Disabled       bool       `json:"disabled"`
	AccessCount    int        `json:"accessCount"`
	DeletionDate   *time.Time `json:"deletionDate,omitempty"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	RevisionDate   time.Time  `json:"revisionDate"`
}

// CompareByRevision orders newest revision first; equal revisions fall back
// to ascending id so ordering is total and stable across syncs.
func CompareByRevision(aRev time.Time, aID string, bRev time.Time, bID string) int {
	if c := bRev.Compare(aRev); c != 0 {
		return c
	}
	return cmp.Compare(aID, bID)
}

// Matches reports a case-insensitive substring hit on name or subtitle.
// q must already be lower-cased.
func (i ListItem) Matches(q string) bool {
	return strings.Contains(strings.ToLower(i.Name), q) ||
		strings.Contains(strings.ToLower(i.Subtitle), q)
}

func (o OrganizationSummary) Matches(q string) bool {
	return strings.Contains(strings.ToLower(o.Name), q)
}

func (s SendSummary) Matches(q string) bool {
	return strings.Contains(strings.ToLower(s.Name), q)
}
