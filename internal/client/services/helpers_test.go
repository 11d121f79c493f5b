package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/accounts"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/cache"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/client"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/syncer"
	"github.com/dmitrijs2005/vaultkeeper/internal/logging"
)

var rev = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

// memBlobs is an in-memory blobs.Repository. A non-nil putManyErr makes
// PutMany fail without writing anything.
type memBlobs struct {
	mu         sync.Mutex
	m          map[string][]byte
	putManyErr error
	putMany    int
}

func newMemBlobs() *memBlobs { return &memBlobs{m: map[string][]byte{}} }

func (r *memBlobs) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.m[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (r *memBlobs) Put(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[key] = append([]byte(nil), value...)
	return nil
}

func (r *memBlobs) PutMany(_ context.Context, kv map[string][]byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putMany++
	if r.putManyErr != nil {
		return r.putManyErr
	}
	for k, v := range kv {
		r.m[k] = append([]byte(nil), v...)
	}
	return nil
}

func (r *memBlobs) failPutMany(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putManyErr = err
}

func (r *memBlobs) putManyCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.putMany
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
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

func (r *memBlobs) has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.m[key]
	return ok
}

type fakeTransport struct {
	mu      sync.Mutex
	items   map[string][]client.RawItem
	orgs    map[string][]client.RawOrg
	orgsErr error
}

func (f *fakeTransport) FetchVaultItems(_ context.Context, id string) ([]client.RawItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id], nil
}

func (f *fakeTransport) FetchOrganizations(_ context.Context, id string) ([]client.RawOrg, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.orgsErr != nil {
		return nil, f.orgsErr
	}
	return f.orgs[id], nil
}

func (f *fakeTransport) FetchSends(context.Context, string) ([]client.RawSend, error) {
	return nil, nil
}

type env struct {
	store     *accounts.Store
	cache     *cache.Cache
	transport *fakeTransport
	blobs     *memBlobs
	state     StateService
	vault     VaultService
}

func newEnv(t *testing.T, blobs *memBlobs) *env {
	t.Helper()
	log := logging.NewNop()
	e := &env{
		store:     accounts.NewStore(log),
		cache:     cache.New(log),
		transport: &fakeTransport{items: map[string][]client.RawItem{}, orgs: map[string][]client.RawOrg{}},
		blobs:     blobs,
	}
	engine := syncer.New(e.store, e.cache, e.transport, log)
	t.Cleanup(engine.Close)
	t.Cleanup(e.cache.Close)

	e.state = NewStateService(blobs, log)
	e.vault = NewVaultService(e.store, e.cache, engine, e.state, log)
	return e
}
