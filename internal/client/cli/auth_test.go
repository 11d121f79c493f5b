package cli

import (
	"context"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/client"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/common"
	"github.com/stretchr/testify/require"
)

func TestLogin_ActivatesAndSyncs(t *testing.T) {
	a := newTestApp(t)
	pw := stubInputs(t, "alice@example.org", "secret")

	require.False(t, a.isLoggedIn())
	require.NoError(t, a.Login(context.Background()))

	require.Equal(t, "alice@example.org", a.auth.gotEmail)
	require.Equal(t, "secret", a.auth.gotPass)
	require.Equal(t, make([]byte, len(pw)), pw, "password must be wiped")

	require.True(t, a.isLoggedIn())
	require.Equal(t, ModeOnline, a.Mode())
	require.Contains(t, a.out.String(), "Logged in as alice@example.org (u1)")
	require.Contains(t, a.out.String(), "Synced: 2 items, 1 organizations, 1 sends")
}

func TestLogin_ForcePasswordReset(t *testing.T) {
	a := newTestApp(t)
	reason := models.AdminForcePasswordReset
	a.auth.acct.Profile.ForcePasswordResetReason = &reason
	stubInputs(t, "alice@example.org", "secret")

	require.NoError(t, a.Login(context.Background()))
	require.Contains(t, a.out.String(), "Master password update required: adminForcePasswordReset")
}

func TestLogin_ServerUnavailable(t *testing.T) {
	a := newTestApp(t)
	a.auth.loginErr = fmt.Errorf("prelogin error: %w", client.ErrUnavailable)
	stubInputs(t, "alice@example.org", "secret")

	err := a.Login(context.Background())
	require.ErrorIs(t, err, client.ErrUnavailable)
	require.Equal(t, ModeOffline, a.Mode())
	require.False(t, a.isLoggedIn())
}

func TestLogin_KdfError(t *testing.T) {
	a := newTestApp(t)
	a.auth.loginErr = common.ErrIncompleteKdfConfig
	stubInputs(t, "alice@example.org", "secret")

	require.ErrorIs(t, a.Login(context.Background()), common.ErrIncompleteKdfConfig)
	require.Equal(t, Mode(""), a.Mode())
}

func TestLogin_EmptyEmail(t *testing.T) {
	a := newTestApp(t)
	stubInputs(t, "", "secret")

	require.ErrorIs(t, a.Login(context.Background()), errEmptyEmail)
	require.Empty(t, a.auth.gotEmail)
}

func TestAccounts_Empty(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.Accounts(context.Background()))
	require.Equal(t, "No accounts\n", a.out.String())
}

func TestAccountsUseLogout(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	a.login(t)
	require.NoError(t, a.store.AddOrUpdate(account("u2", "bob@example.org")))

	require.NoError(t, a.Accounts(ctx))
	out := a.out.String()
	require.Contains(t, out, "*  u1")
	require.Contains(t, out, "bob@example.org")
	require.NotContains(t, out, "*  u2")

	a.out.Reset()
	require.NoError(t, a.Use(ctx, "u2"))
	require.Equal(t, "Switched to bob@example.org\n", a.out.String())
	require.Contains(t, a.getStatus(), "bob@example.org")

	a.out.Reset()
	require.NoError(t, a.Logout(ctx, ""))
	require.Equal(t, "Logged out u2\n", a.out.String())
	require.False(t, a.isLoggedIn())
	require.Len(t, a.store.AllAccounts(), 1)

	require.ErrorIs(t, a.Logout(ctx, ""), common.ErrNoActiveAccount)
	require.NoError(t, a.Logout(ctx, "u1"))
	require.Empty(t, a.store.AllAccounts())
}

func TestUse_UnknownAccount(t *testing.T) {
	a := newTestApp(t)
	require.ErrorIs(t, a.Use(context.Background(), "ghost"), common.ErrUnknownAccount)
}
