package kdf

import (
	"testing"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/common"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestResolve_NilTypeDefaultsToPbkdf2RegardlessOfOtherFields(t *testing.T) {
	profiles := []models.Profile{
		{},
		{KdfIterations: ptr(5000)},
		{KdfMemory: ptr(64), KdfParallelism: ptr(4)},
		{KdfIterations: ptr(1), KdfMemory: ptr(1), KdfParallelism: ptr(1)},
	}
	for _, p := range profiles {
		cfg, err := Resolve(p)
		require.NoError(t, err)
		require.Equal(t, models.KdfTypePbkdf2SHA256, cfg.Type())
		require.Equal(t, common.DefaultPbkdf2Iterations, cfg.Iterations())
	}
}

func TestResolve_Pbkdf2(t *testing.T) {
	cfg, err := Resolve(models.Profile{KdfType: ptr(models.KdfTypePbkdf2SHA256), KdfIterations: ptr(100_000), KdfMemory: ptr(64)})
	require.NoError(t, err)
	require.Equal(t, Pbkdf2{iterations: 100_000}, cfg)

	cfg, err = Resolve(models.Profile{KdfType: ptr(models.KdfTypePbkdf2SHA256)})
	require.NoError(t, err)
	require.Equal(t, common.DefaultPbkdf2Iterations, cfg.Iterations())
}

func TestResolve_Argon2id(t *testing.T) {
	cfg, err := Resolve(models.Profile{
		KdfType:        ptr(models.KdfTypeArgon2id),
		KdfIterations:  ptr(4),
		KdfMemory:      ptr(128),
		KdfParallelism: ptr(2),
	})
	require.NoError(t, err)

	a, ok := cfg.(Argon2id)
	require.True(t, ok)
	require.Equal(t, 4, a.Iterations())
	require.Equal(t, 128, a.MemoryMiB())
	require.Equal(t, 2, a.Parallelism())
}

func TestResolve_Argon2idDefaultsIterationsOnly(t *testing.T) {
	cfg, err := Resolve(models.Profile{KdfType: ptr(models.KdfTypeArgon2id), KdfMemory: ptr(64), KdfParallelism: ptr(4)})
	require.NoError(t, err)
	require.Equal(t, common.DefaultArgon2Iterations, cfg.Iterations())
}

func TestResolve_MissingOrOutOfRangeParamsAreIncomplete(t *testing.T) {
	tests := []struct {
		name    string
		profile models.Profile
	}{
		{"missing both", models.Profile{KdfType: ptr(models.KdfTypeArgon2id), KdfIterations: ptr(3)}},
		{"missing memory", models.Profile{KdfType: ptr(models.KdfTypeArgon2id), KdfParallelism: ptr(4)}},
		{"missing parallelism", models.Profile{KdfType: ptr(models.KdfTypeArgon2id), KdfMemory: ptr(64)}},
		{"zero memory", models.Profile{KdfType: ptr(models.KdfTypeArgon2id), KdfMemory: ptr(0), KdfParallelism: ptr(4)}},
		{"zero parallelism", models.Profile{KdfType: ptr(models.KdfTypeArgon2id), KdfMemory: ptr(64), KdfParallelism: ptr(0)}},
		{"parallelism overflows", models.Profile{KdfType: ptr(models.KdfTypeArgon2id), KdfMemory: ptr(1), KdfParallelism: ptr(256)}},
		{"memory overflows", models.Profile{KdfType: ptr(models.KdfTypeArgon2id), KdfMemory: ptr(MaxArgon2MemoryMiB + 1), KdfParallelism: ptr(4)}},
		{"negative iterations", models.Profile{KdfType: ptr(models.KdfTypeArgon2id), KdfIterations: ptr(-1), KdfMemory: ptr(64), KdfParallelism: ptr(4)}},
		{"pbkdf2 zero iterations", models.Profile{KdfType: ptr(models.KdfTypePbkdf2SHA256), KdfIterations: ptr(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Resolve(tt.profile)
			require.ErrorIs(t, err, common.ErrIncompleteKdfConfig)
			require.Nil(t, cfg)
		})
	}
}

func TestResolve_Argon2idUpperBoundsAccepted(t *testing.T) {
	cfg, err := Resolve(models.Profile{
		KdfType:        ptr(models.KdfTypeArgon2id),
		KdfMemory:      ptr(MaxArgon2MemoryMiB),
		KdfParallelism: ptr(MaxArgon2Parallelism),
	})
	require.NoError(t, err)
	require.Equal(t, MaxArgon2MemoryMiB, cfg.(Argon2id).MemoryMiB())
	require.Equal(t, MaxArgon2Parallelism, cfg.(Argon2id).Parallelism())
}

func TestResolve_UnknownType(t *testing.T) {
	_, err := Resolve(models.Profile{KdfType: ptr(models.KdfType(9))})
	require.ErrorIs(t, err, common.ErrUnsupportedKdf)
}

func TestResolve_IsDeterministic(t *testing.T) {
	p := models.Profile{KdfType: ptr(models.KdfTypeArgon2id), KdfMemory: ptr(64), KdfParallelism: ptr(4)}
	first, err := Resolve(p)
	require.NoError(t, err)
	for range 10 {
		again, err := Resolve(p)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestConfig_String(t *testing.T) {
	cfg, err := Resolve(models.Profile{KdfType: ptr(models.KdfTypeArgon2id), KdfMemory: ptr(64), KdfParallelism: ptr(4)})
	require.NoError(t, err)
	require.Equal(t, "argon2id(iterations=3, memory=64MiB, parallelism=4)", cfg.(Argon2id).String())
}
