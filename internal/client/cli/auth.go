package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/client"
	"github.com/dmitrijs2005/vaultkeeper/internal/common"
)

// Prompt seams, replaced in tests.
var (
	promptLine   = askLine
	promptSecret = askSecret
)

var errEmptyEmail = errors.New("email must not be empty")

// Login prompts for credentials, signs the account in and makes it active.
// A fresh login is followed by a manual sync. An unreachable server flips
// the App to offline mode.
//
// The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := promptLine(a.reader, a.out, "Email")
	if err != nil {
		return err
	}
	if email == "" {
		return errEmptyEmail
	}

	password, err := promptSecret(a.out, "Master password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	acct, err := a.auth.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		return err
	}
	a.setMode(ModeOnline)

	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", acct.Profile.Email, acct.ID())
	if r := acct.Profile.ForcePasswordResetReason; r != nil {
		fmt.Fprintf(a.out, "Master password update required: %s\n", *r)
	}
	return a.Sync(ctx)
}

// Accounts prints every signed-in account; the active one is starred.
func (a *App) Accounts(ctx context.Context) error {
	all := a.vault.AllAccounts()
	if len(all) == 0 {
		fmt.Fprintln(a.out, "No accounts")
		return nil
	}

	active := ""
	if acct, err := a.vault.ActiveAccount(); err == nil {
		active = acct.ID()
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, acct := range all {
		mark := " "
		if acct.ID() == active {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, acct.ID(), acct.Profile.Email, acct.Profile.Name)
	}
	return tw.Flush()
}

// Use switches the active account.
func (a *App) Use(ctx context.Context, userID string) error {
	if err := a.vault.SetActive(ctx, userID); err != nil {
		return err
	}
	acct, err := a.vault.ActiveAccount()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Switched to %s\n", acct.Profile.Email)
	return nil
}

// Logout signs out userID, or the active account when userID is empty.
func (a *App) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		acct, err := a.vault.ActiveAccount()
		if err != nil {
			return err
		}
		userID = acct.ID()
	}
	if err := a.vault.Logout(ctx, userID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged out %s\n", userID)
	return nil
}
