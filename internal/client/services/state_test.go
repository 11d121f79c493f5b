package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/cache"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/client"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/repositories/blobs"
	"github.com/dmitrijs2005/vaultkeeper/internal/logging"
	"github.com/stretchr/testify/require"
)

func account(id string) models.Account {
	return models.Account{
		Profile: models.Profile{UserID: id, Email: id + "@example.com"},
		Tokens:  models.Tokens{AccessToken: "at-" + id, RefreshToken: "rt-" + id},
	}
}

func newClockedState(repo blobs.Repository) *stateService {
	s := NewStateService(repo, logging.NewNop()).(*stateService)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Minute)
	}
	return s
}

func TestState_AccountsKeepFirstSavedOrder(t *testing.T) {
	s := newClockedState(newMemBlobs())
	ctx := context.Background()

	require.NoError(t, s.SaveAccount(ctx, account("zed")))
	require.NoError(t, s.SaveAccount(ctx, account("amy")))
	updated := account("zed")
	updated.Tokens.AccessToken = "rotated"
	require.NoError(t, s.SaveAccount(ctx, updated))
	require.NoError(t, s.SaveActive(ctx, "amy"))

	st, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, st.Accounts, 2)
	require.Equal(t, "zed", st.Accounts[0].ID())
	require.Equal(t, "rotated", st.Accounts[0].Tokens.AccessToken)
	require.Equal(t, "amy", st.Accounts[1].ID())
	require.Equal(t, "amy", st.ActiveID)
}

func TestState_UndecodableRecordsAreSkipped(t *testing.T) {
	repo := newMemBlobs()
	s := newClockedState(repo)
	ctx := context.Background()

	require.NoError(t, s.SaveAccount(ctx, account("good")))
	require.NoError(t, repo.Put(ctx, "account/broken", []byte("{not json")))
	require.NoError(t, repo.Put(ctx, "snapshot/good", []byte("[]")))
	require.NoError(t, s.SaveActive(ctx, "broken"))

	st, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, st.Accounts, 1)
	require.Equal(t, "good", st.Accounts[0].ID())
	require.Empty(t, st.ActiveID, "active id of a skipped account is dropped")

	_, ok, err := s.LoadSnapshot(ctx, "good")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestState_AccountUnderForeignKeyIsSkipped(t *testing.T) {
	repo := newMemBlobs()
	s := newClockedState(repo)
	ctx := context.Background()

	require.NoError(t, s.SaveAccount(ctx, account("a")))
	data, err := repo.Get(ctx, "account/a")
	require.NoError(t, err)
	require.NoError(t, repo.Put(ctx, "account/b", data))

	st, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, st.Accounts, 1)
}

func TestState_SnapshotAndDelete(t *testing.T) {
	repo := newMemBlobs()
	s := newClockedState(repo)
	ctx := context.Background()

	_, ok, err := s.LoadSnapshot(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok)

	e := cache.Entities{Items: []models.ListItem{{ID: "1", Name: "Example", Type: models.ItemTypeLogin, RevisionDate: rev}}}
	require.NoError(t, s.SaveAccount(ctx, account("a")))
	require.NoError(t, s.SaveSnapshot(ctx, "a", e))

	got, ok, err := s.LoadSnapshot(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Example", got.Items[0].Name)
	require.True(t, rev.Equal(got.Items[0].RevisionDate))

	require.NoError(t, s.DeleteAccount(ctx, "a"))
	require.False(t, repo.has("account/a"))
	require.False(t, repo.has("snapshot/a"))

	require.NoError(t, s.SaveActive(ctx, "a"))
	require.NoError(t, s.SaveActive(ctx, ""))
	require.False(t, repo.has("active"))
}

func populatedEntities() cache.Entities {
	deleted := rev.Add(-time.Hour)
	expires := rev.Add(24 * time.Hour)
	removes := rev.Add(7 * 24 * time.Hour)
	return cache.Entities{
		Items: []models.ListItem{
			{
				ID: "1", OrganizationID: "o1", FolderID: "f1", Name: "Visa", Subtitle: "Visa, *4242",
				Type: models.ItemTypeCard, Favorite: true, Edit: true, ViewPassword: true, RevisionDate: rev,
			},
			{ID: "2", Name: "Old login", Type: models.ItemTypeLogin, DeletedAt: &deleted, RevisionDate: deleted},
		},
		Organizations: []models.OrganizationSummary{
			{ID: "o1", Name: "Acme", Enabled: true, RevisionDate: rev},
			{ID: "o2", Name: "Retired", RevisionDate: deleted},
		},
		Sends: []models.SendSummary{
			{
				ID: "s1", Name: "Wifi", Type: models.SendTypeText, Disabled: true, AccessCount: 3,
				DeletionDate: &removes, ExpirationDate: &expires, RevisionDate: rev,
			},
			{ID: "s2", Name: "Report", Type: models.SendTypeFile, RevisionDate: rev},
		},
	}
}

func TestState_SnapshotRoundTripKeepsEveryField(t *testing.T) {
	ctx := context.Background()
	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for name, repo := range map[string]blobs.Repository{"memory": newMemBlobs(), "sqlite": blobs.NewSQLiteRepository(db)} {
		t.Run(name, func(t *testing.T) {
			s := NewStateService(repo, logging.NewNop())
			want := populatedEntities()

			require.NoError(t, s.SaveSync(ctx, account("a"), want))
			got, ok, err := s.LoadSnapshot(ctx, "a")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, want, got)

			st, err := s.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, []models.Account{account("a")}, st.Accounts)
		})
	}
}

func TestState_SaveSyncWritesNothingOnFailure(t *testing.T) {
	repo := newMemBlobs()
	s := NewStateService(repo, logging.NewNop())
	repo.failPutMany(errors.New("disk full"))

	require.Error(t, s.SaveSync(context.Background(), account("a"), populatedEntities()))
	require.False(t, repo.has("account/a"))
	require.False(t, repo.has("snapshot/a"))
}

func TestState_OverSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewStateService(blobs.NewSQLiteRepository(db), logging.NewNop())
	require.NoError(t, s.SaveAccount(ctx, account("a")))
	require.NoError(t, s.SaveActive(ctx, "a"))

	st, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", st.ActiveID)
	require.Equal(t, "a@example.com", st.Accounts[0].Profile.Email)
}
