// Package kdf turns the raw, optional KDF fields of an account profile into a
// complete, algorithm-specific configuration.
//
// Config values can only be obtained from Resolve, so any Config held by
// downstream code is known to be complete. Missing Argon2id memory or
// parallelism is reported as common.ErrIncompleteKdfConfig and never guessed:
// a wrong guess yields a key that cannot decrypt the vault.
package kdf

import (
	"fmt"
	"math"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/common"
)

// Config is either Pbkdf2 or Argon2id.
type Config interface {
	Type() models.KdfType
	Iterations() int
	sealed()
}

type Pbkdf2 struct {
	iterations int
}

func (Pbkdf2) Type() models.KdfType { return models.KdfTypePbkdf2SHA256 }
func (c Pbkdf2) Iterations() int    { return c.iterations }
func (Pbkdf2) sealed()              {}

func (c Pbkdf2) String() string {
	return fmt.Sprintf("pbkdf2(iterations=%d)", c.iterations)
}

type Argon2id struct {
	iterations  int
	memoryMiB   int
	parallelism int
}

func (Argon2id) Type() models.KdfType { return models.KdfTypeArgon2id }
func (c Argon2id) Iterations() int    { return c.iterations }

// MemoryMiB is the memory cost in mebibytes.
func (c Argon2id) MemoryMiB() int   { return c.memoryMiB }
func (c Argon2id) Parallelism() int { return c.parallelism }
func (Argon2id) sealed()            {}

func (c Argon2id) String() string {
	return fmt.Sprintf("argon2id(iterations=%d, memory=%dMiB, parallelism=%d)", c.iterations, c.memoryMiB, c.parallelism)
}

// Argon2id bounds imposed by the derivation: memory is passed in KiB as a
// uint32 and parallelism as a uint8.
const (
	MaxArgon2MemoryMiB   = math.MaxUint32 / 1024
	MaxArgon2Parallelism = math.MaxUint8
	MaxIterations        = math.MaxUint32
)

// Resolve derives the KDF configuration of a profile. It is pure.
func Resolve(p models.Profile) (Config, error) {
	return ResolveParams(p.KdfParams())
}

// ResolveParams applies the same rules to bare parameters, e.g. the prelogin
// response that precedes account creation.
func ResolveParams(p models.KdfParams) (Config, error) {
	if p.Type == nil {
		return Pbkdf2{iterations: common.DefaultPbkdf2Iterations}, nil
	}

	switch *p.Type {
	case models.KdfTypePbkdf2SHA256:
		iterations := common.DefaultPbkdf2Iterations
		if p.Iterations != nil {
			iterations = *p.Iterations
		}
		if iterations < 1 || int64(iterations) > MaxIterations {
			return nil, fmt.Errorf("%w: pbkdf2 iterations out of range, got %d", common.ErrIncompleteKdfConfig, iterations)
		}
		return Pbkdf2{iterations: iterations}, nil

	case models.KdfTypeArgon2id:
		if p.Memory == nil || p.Parallelism == nil {
			return nil, fmt.Errorf("%w: argon2id requires memory and parallelism", common.ErrIncompleteKdfConfig)
		}
		iterations := common.DefaultArgon2Iterations
		if p.Iterations != nil {
			iterations = *p.Iterations
		}
		if iterations < 1 || int64(iterations) > MaxIterations {
			return nil, fmt.Errorf("%w: argon2id iterations out of range, got %d", common.ErrIncompleteKdfConfig, iterations)
		}
		if *p.Memory < 1 || *p.Memory > MaxArgon2MemoryMiB {
			return nil, fmt.Errorf("%w: argon2id memory out of range, got %d MiB", common.ErrIncompleteKdfConfig, *p.Memory)
		}
		if *p.Parallelism < 1 || *p.Parallelism > MaxArgon2Parallelism {
			return nil, fmt.Errorf("%w: argon2id parallelism out of range, got %d", common.ErrIncompleteKdfConfig, *p.Parallelism)
		}
		return Argon2id{iterations: iterations, memoryMiB: *p.Memory, parallelism: *p.Parallelism}, nil

	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedKdf, *p.Type)
	}
}
