package cryptox

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/kdf"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func cheapPbkdf2(t *testing.T) kdf.Config {
	t.Helper()
	cfg, err := kdf.Resolve(models.Profile{KdfType: ptr(models.KdfTypePbkdf2SHA256), KdfIterations: ptr(1000)})
	require.NoError(t, err)
	return cfg
}

func cheapArgon(t *testing.T) kdf.Config {
	t.Helper()
	cfg, err := kdf.Resolve(models.Profile{
		KdfType:        ptr(models.KdfTypeArgon2id),
		KdfIterations:  ptr(1),
		KdfMemory:      ptr(1),
		KdfParallelism: ptr(1),
	})
	require.NoError(t, err)
	return cfg
}

func TestSalt_Normalizes(t *testing.T) {
	require.Equal(t, []byte("user@example.com"), Salt("  User@Example.COM "))
}

func TestDeriveMasterKey_Deterministic(t *testing.T) {
	for _, cfg := range []kdf.Config{cheapPbkdf2(t), cheapArgon(t)} {
		password := []byte("secret-password")
		salt := Salt("user@example.com")

		key1, err := DeriveMasterKey(password, salt, cfg)
		require.NoError(t, err)
		key2, err := DeriveMasterKey(password, salt, cfg)
		require.NoError(t, err)

		require.Len(t, key1, KeySize)
		require.True(t, bytes.Equal(key1, key2), "same inputs must give same key for %s", cfg.Type())
	}
}

func TestDeriveMasterKey_DifferentInputs(t *testing.T) {
	password := []byte("secret-password")
	cfg := cheapPbkdf2(t)

	key1, err := DeriveMasterKey(password, []byte("salt-1"), cfg)
	require.NoError(t, err)
	key2, err := DeriveMasterKey(password, []byte("salt-2"), cfg)
	require.NoError(t, err)
	require.False(t, bytes.Equal(key1, key2), "different salts must give different keys")

	key3, err := DeriveMasterKey(password, []byte("salt-1"), cheapArgon(t))
	require.NoError(t, err)
	require.False(t, bytes.Equal(key1, key3), "algorithms must not collide")
}

func TestDeriveMasterKey_NilConfig(t *testing.T) {
	_, err := DeriveMasterKey([]byte("p"), []byte("s"), nil)
	require.Error(t, err)
}

func TestMasterPasswordHash(t *testing.T) {
	key, err := DeriveMasterKey([]byte("pw"), Salt("a@b.c"), cheapPbkdf2(t))
	require.NoError(t, err)

	h1 := MasterPasswordHash(key, []byte("pw"))
	h2 := MasterPasswordHash(key, []byte("pw"))
	require.Equal(t, h1, h2)

	raw, err := base64.StdEncoding.DecodeString(h1)
	require.NoError(t, err)
	require.Len(t, raw, KeySize)

	require.NotEqual(t, h1, MasterPasswordHash(key, []byte("other")))
}

func TestDeriveMasterKey_ResolvedArgonNeverPanics(t *testing.T) {
	cfg, err := kdf.Resolve(models.Profile{
		KdfType:        ptr(models.KdfTypeArgon2id),
		KdfIterations:  ptr(1),
		KdfMemory:      ptr(1),
		KdfParallelism: ptr(kdf.MaxArgon2Parallelism),
	})
	require.NoError(t, err)

	require.NotPanics(t, func() {
		key, err := DeriveMasterKey([]byte("pw"), Salt("a@example.com"), cfg)
		require.NoError(t, err)
		require.Len(t, key, KeySize)
	})

	_, err = kdf.Resolve(models.Profile{
		KdfType:        ptr(models.KdfTypeArgon2id),
		KdfMemory:      ptr(1),
		KdfParallelism: ptr(kdf.MaxArgon2Parallelism + 1),
	})
	require.Error(t, err)
}
