package syncer

import (
	"strings"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/client"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
)

var itemTypes = map[string]models.ItemType{
	"login":       models.ItemTypeLogin,
	"card":        models.ItemTypeCard,
	"identity":    models.ItemTypeIdentity,
	"secure_note": models.ItemTypeSecureNote,
	"securenote":  models.ItemTypeSecureNote,
	"ssh_key":     models.ItemTypeSSHKey,
	"sshkey":      models.ItemTypeSSHKey,
}

func itemType(raw string) models.ItemType {
	if t, ok := itemTypes[strings.ToLower(raw)]; ok {
		return t
	}
	return models.ItemType(raw)
}

// subtitle is the secondary line of a list row: the username of a login or
// the masked card number.
func subtitle(r client.RawItem, t models.ItemType) string {
	switch t {
	case models.ItemTypeLogin:
		return r.Username
	case models.ItemTypeCard:
		switch {
		case r.CardBrand != "" && r.CardLast4 != "":
			return r.CardBrand + ", *" + r.CardLast4
		case r.CardLast4 != "":
			return "*" + r.CardLast4
		default:
			return r.CardBrand
		}
	default:
		return ""
	}
}

func toItems(raw []client.RawItem) []models.ListItem {
	out := make([]models.ListItem, 0, len(raw))
	for _, r := range raw {
		t := itemType(r.Type)
		out = append(out, models.ListItem{
			ID:             r.ID,
			OrganizationID: r.OrganizationID,
			FolderID:       r.FolderID,
			Name:           r.Name,
			Subtitle:       subtitle(r, t),
			Type:           t,
			Favorite:       r.Favorite,
			Edit:           r.Edit,
			ViewPassword:   r.ViewPassword,
			DeletedAt:      r.DeletedDate,
			RevisionDate:   r.RevisionDate,
		})
	}
	return out
}

func toOrganizations(raw []client.RawOrg) []models.OrganizationSummary {
	out := make([]models.OrganizationSummary, 0, len(raw))
	for _, r := range raw {
		out = append(out, models.OrganizationSummary{
			ID:           r.ID,
			Name:         r.Name,
			Enabled:      r.Enabled,
			RevisionDate: r.RevisionDate,
		})
	}
	return out
}

func toSends(raw []client.RawSend) []models.SendSummary {
	out := make([]models.SendSummary, 0, len(raw))
	for _, r := range raw {
		t := models.SendTypeText
		if strings.EqualFold(r.Type, string(models.SendTypeFile)) {
			t = models.SendTypeFile
		}
		out = append(out, models.SendSummary{
			ID:             r.ID,
			Name:           r.Name,
			Type:           t,
			Disabled:       r.Disabled,
			AccessCount:    r.AccessCount,
			DeletionDate:   r.DeletionDate,
			ExpirationDate: r.ExpirationDate,
			RevisionDate:   r.RevisionDate,
		})
	}
	return out
}
