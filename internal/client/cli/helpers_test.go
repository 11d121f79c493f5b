package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/accounts"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/cache"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/client"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/config"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/services"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/syncer"
	"github.com/dmitrijs2005/vaultkeeper/internal/logging"
)

var rev = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

type memBlobs struct {
	mu sync.Mutex
	m  map[string][]byte
}

func (r *memBlobs) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m[key], nil
}

func (r *memBlobs) Put(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[key] = append([]byte(nil), value...)
	return nil
}

func (r *memBlobs) PutMany(ctx context.Context, kv map[string][]byte) error {
	for k, v := range kv {
		_ = r.Put(ctx, k, v)
	}
	return nil
}

func (r *memBlobs) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, key)
	return nil
}

func (r *memBlobs) List(_ context.Context, prefix string) (map[string][]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string][]byte{}
	for k, v := range r.m {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out, nil
}

type fakeTransport struct {
	mu       sync.Mutex
	items    []client.RawItem
	orgs     []client.RawOrg
	sends    []client.RawSend
	sendsErr error
}

func (f *fakeTransport) FetchVaultItems(context.Context, string) ([]client.RawItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items, nil
}

func (f *fakeTransport) FetchOrganizations(context.Context, string) ([]client.RawOrg, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orgs, nil
}

func (f *fakeTransport) FetchSends(context.Context, string) ([]client.RawSend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendsErr != nil {
		return nil, f.sendsErr
	}
	return f.sends, nil
}

// fakeAuth signs in a fixed account without any crypto.
type fakeAuth struct {
	store *accounts.Store
	vault services.VaultService

	acct     models.Account
	loginErr error
	pingErr  error

	gotEmail string
	gotPass  string
}

func (f *fakeAuth) Login(ctx context.Context, email string, password []byte) (models.Account, error) {
	f.gotEmail, f.gotPass = email, string(password)
	if f.loginErr != nil {
		return models.Account{}, f.loginErr
	}
	if err := f.store.AddOrUpdate(f.acct); err != nil {
		return models.Account{}, err
	}
	return f.acct, f.vault.SetActive(ctx, f.acct.ID())
}

func (f *fakeAuth) Ping(context.Context) error { return f.pingErr }

func account(id, email string) models.Account {
	pbkdf2 := models.KdfTypePbkdf2SHA256
	return models.Account{Profile: models.Profile{UserID: id, Email: email, Name: strings.Split(email, "@")[0], KdfType: &pbkdf2}}
}

func sampleTransport() *fakeTransport {
	trashed := rev.Add(-time.Hour)
	return &fakeTransport{
		items: []client.RawItem{
			{ID: "i1", Type: "login", Name: "Example", Username: "alice", Favorite: true, RevisionDate: rev},
			{ID: "i2", Type: "card", Name: "Visa", CardBrand: "Visa", CardLast4: "4242", OrganizationID: "o1", RevisionDate: rev.Add(-time.Minute)},
			{ID: "i3", Type: "secure_note", Name: "Old note", DeletedDate: &trashed, RevisionDate: rev.Add(-2 * time.Minute)},
		},
		orgs:  []client.RawOrg{{ID: "o1", Name: "Acme", Enabled: true, RevisionDate: rev}},
		sends: []client.RawSend{{ID: "s1", Name: "Wifi password", Type: "text", AccessCount: 3, RevisionDate: rev}},
	}
}

type testApp struct {
	*App
	store     *accounts.Store
	transport *fakeTransport
	auth      *fakeAuth
	out       *bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	log := logging.NewNop()

	store := accounts.NewStore(log)
	vc := cache.New(log)
	tr := sampleTransport()
	engine := syncer.New(store, vc, tr, log)
	t.Cleanup(vc.Close)

	state := services.NewStateService(&memBlobs{m: map[string][]byte{}}, log)
	vault := services.NewVaultService(store, vc, engine, state, log)
	auth := &fakeAuth{store: store, vault: vault, acct: account("u1", "alice@example.org")}

	out := &bytes.Buffer{}
	app := &App{
		config: &config.Config{OnlineCheckInterval: time.Second},
		log:    log,
		auth:   auth,
		vault:  vault,
		engine: engine,
		reader: rdr(""),
		out:    out,
	}
	t.Cleanup(func() { _ = app.Close() })

	return &testApp{App: app, store: store, transport: tr, auth: auth, out: out}
}

// stubInputs replaces the interactive prompts for the duration of the test.
// The returned slice is the password buffer handed to the App.
func stubInputs(t *testing.T, email, password string) []byte {
	t.Helper()
	pw := []byte(password)
	origLine, origSecret := promptLine, promptSecret
	promptLine = func(_ *bufio.Reader, _ io.Writer, _ string) (string, error) { return email, nil }
	promptSecret = func(_ io.Writer, _ string) ([]byte, error) { return pw, nil }
	t.Cleanup(func() {
		promptLine = origLine
		promptSecret = origSecret
	})
	return pw
}

func (a *testApp) login(t *testing.T) {
	t.Helper()
	stubInputs(t, "alice@example.org", "secret")
	if err := a.Login(context.Background()); err != nil {
		t.Fatalf("login: %v", err)
	}
	a.out.Reset()
}
