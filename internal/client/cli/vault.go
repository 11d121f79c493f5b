package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/cache"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/syncer"
	"github.com/dmitrijs2005/vaultkeeper/internal/common"
)

var errFilterUsage = errors.New("usage: [all|my|org <id>]")

func parseFilter(args []string) (cache.VaultFilter, error) {
	switch {
	case len(args) == 0, len(args) == 1 && args[0] == "all":
		return cache.AllVaults(), nil
	case len(args) == 1 && args[0] == "my":
		return cache.MyVault(), nil
	case len(args) == 2 && args[0] == "org":
		return cache.Organization(args[1]), nil
	default:
		return cache.VaultFilter{}, errFilterUsage
	}
}

// Sync runs a manual sync of the active account. A partial failure is
// reported but is not an error: the cache keeps the previous data of the
// failed collections.
func (a *App) Sync(ctx context.Context) error {
	err := a.vault.Sync(ctx, syncer.TriggerManual)

	var partial *syncer.PartialSyncFailure
	switch {
	case err == nil:
	case errors.As(err, &partial):
		failed := make([]string, 0, len(partial.Failures))
		for _, c := range partial.Failed() {
			failed = append(failed, string(c))
		}
		fmt.Fprintf(a.out, "Sync incomplete, kept previous data for: %s\n", strings.Join(failed, ", "))
	default:
		return err
	}

	sum := a.vault.Summarize(cache.AllVaults())
	fmt.Fprintf(a.out, "Synced: %d items, %d organizations, %d sends\n",
		sum.Total, len(a.vault.Organizations()), len(a.vault.Sends()))
	return nil
}

func (a *App) List(ctx context.Context, args []string) error {
	f, err := parseFilter(args)
	if err != nil {
		return err
	}
	items := a.vault.Filter(f)
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No items")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, it := range items {
		writeItemRow(tw, it)
	}
	return tw.Flush()
}

func writeItemRow(tw *tabwriter.Writer, it models.ListItem) {
	fav := " "
	if it.Favorite {
		fav = "*"
	}
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", fav, it.ID, it.Type, it.Name, it.Subtitle)
}

// Groups prints the grouped vault list: counts per item type, favorites and
// trash.
func (a *App) Groups(ctx context.Context, args []string) error {
	f, err := parseFilter(args)
	if err != nil {
		return err
	}
	sum := a.vault.Summarize(f)

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, g := range sum.Groups {
		fmt.Fprintf(tw, "%s\t%d\n", g.Type, g.Count)
	}
	fmt.Fprintf(tw, "favorites\t%d\n", sum.Favorites)
	fmt.Fprintf(tw, "trash\t%d\n", sum.Trash)
	fmt.Fprintf(tw, "total\t%d\n", sum.Total)
	return tw.Flush()
}

func (a *App) Orgs(ctx context.Context) error {
	orgs := a.vault.Organizations()
	if len(orgs) == 0 {
		fmt.Fprintln(a.out, "No organizations")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, o := range orgs {
		writeOrgRow(tw, o)
	}
	return tw.Flush()
}

func writeOrgRow(tw *tabwriter.Writer, o models.OrganizationSummary) {
	state := "enabled"
	if !o.Enabled {
		state = "disabled"
	}
	fmt.Fprintf(tw, "%s\t%s\t%s\n", o.ID, o.Name, state)
}

func (a *App) Sends(ctx context.Context) error {
	sends := a.vault.Sends()
	if len(sends) == 0 {
		fmt.Fprintln(a.out, "No sends")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, s := range sends {
		writeSendRow(tw, s)
	}
	return tw.Flush()
}

func writeSendRow(tw *tabwriter.Writer, s models.SendSummary) {
	state := ""
	if s.Disabled {
		state = "disabled"
	}
	fmt.Fprintf(tw, "%s\t%s\t%s\t%d views\t%s\n", s.ID, s.Type, s.Name, s.AccessCount, state)
}

var searchScopes = map[string]cache.SearchScope{
	"vault": cache.SearchVault,
	"orgs":  cache.SearchOrganizations,
	"sends": cache.SearchSends,
}

// Search runs a one-shot search. A leading vault, orgs or sends word picks
// the searched collection when more words follow; the default is the vault.
func (a *App) Search(ctx context.Context, args []string) error {
	scope := cache.SearchVault
	if s, ok := searchScopes[args[0]]; ok && len(args) > 1 {
		scope, args = s, args[1:]
	}

	res := a.vault.Search(strings.Join(args, " "), scope)
	if res.Len() == 0 {
		fmt.Fprintln(a.out, "No matches")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, it := range res.Items {
		writeItemRow(tw, it)
	}
	for _, o := range res.Organizations {
		writeOrgRow(tw, o)
	}
	for _, s := range res.Sends {
		writeSendRow(tw, s)
	}
	return tw.Flush()
}

// Show prints one vault item, falling back to a send with that id.
func (a *App) Show(ctx context.Context, id string) error {
	it, err := a.vault.Get(id)
	if err == nil {
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "id\t%s\n", it.ID)
		fmt.Fprintf(tw, "name\t%s\n", it.Name)
		fmt.Fprintf(tw, "type\t%s\n", it.Type)
		if it.Subtitle != "" {
			fmt.Fprintf(tw, "detail\t%s\n", it.Subtitle)
		}
		if it.OrganizationID != "" {
			fmt.Fprintf(tw, "organization\t%s\n", it.OrganizationID)
		}
		if it.FolderID != "" {
			fmt.Fprintf(tw, "folder\t%s\n", it.FolderID)
		}
		fmt.Fprintf(tw, "favorite\t%t\n", it.Favorite)
		if it.Deleted() {
			fmt.Fprintf(tw, "deleted\t%s\n", it.DeletedAt.Format(time.RFC3339))
		}
		fmt.Fprintf(tw, "revised\t%s\n", it.RevisionDate.Format(time.RFC3339))
		return tw.Flush()
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	s, err := a.vault.GetSend(id)
	if err != nil {
		return fmt.Errorf("item %s: %w", id, err)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id\t%s\n", s.ID)
	fmt.Fprintf(tw, "name\t%s\n", s.Name)
	fmt.Fprintf(tw, "type\tsend/%s\n", s.Type)
	fmt.Fprintf(tw, "views\t%d\n", s.AccessCount)
	if s.ExpirationDate != nil {
		fmt.Fprintf(tw, "expires\t%s\n", s.ExpirationDate.Format(time.RFC3339))
	}
	if s.DeletionDate != nil {
		fmt.Fprintf(tw, "deletes\t%s\n", s.DeletionDate.Format(time.RFC3339))
	}
	return tw.Flush()
}

// Kdf prints the key-derivation settings of the active account.
func (a *App) Kdf(ctx context.Context) error {
	cfg, err := a.vault.Resolve()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "KDF: %v\n", cfg)
	return nil
}
