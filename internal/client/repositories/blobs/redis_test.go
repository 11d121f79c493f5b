package blobs

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Runs against a live server only: VAULTKEEPER_TEST_REDIS=redis://localhost:6379/15
func newTestRedis(t *testing.T) *RedisRepository {
	t.Helper()
	url := os.Getenv("VAULTKEEPER_TEST_REDIS")
	if url == "" {
		t.Skip("VAULTKEEPER_TEST_REDIS not set")
	}

	rdb, err := ConnectRedis(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	prefix := "vaultkeeper-test-" + uuid.NewString() + ":"
	t.Cleanup(func() {
		ctx := context.Background()
		iter := rdb.Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
		for iter.Next(ctx) {
			rdb.Del(ctx, iter.Val())
		}
	})
	return NewRedisRepository(rdb, prefix)
}

func TestRedis_RoundTrip(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	v, err := r.Get(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.PutMany(ctx, map[string][]byte{
		"account/1":  []byte("a1"),
		"snapshot/1": []byte("s1"),
	}))
	require.NoError(t, r.Put(ctx, "account/2", []byte("a2")))

	m, err := r.List(ctx, "account/")
	require.NoError(t, err)
	require.Equal(t, map[string][]byte{"account/1": []byte("a1"), "account/2": []byte("a2")}, m)

	require.NoError(t, r.Delete(ctx, "account/1"))
	require.NoError(t, r.Delete(ctx, "account/1"))
	v, err = r.Get(ctx, "account/1")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestConnectRedis_BadURL(t *testing.T) {
	_, err := ConnectRedis(context.Background(), "http://not-redis")
	require.ErrorContains(t, err, "parse redis url")
}

var _ Repository = (*RedisRepository)(nil)
var _ Repository = (*SQLiteRepository)(nil)
