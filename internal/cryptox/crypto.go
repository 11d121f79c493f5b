// Package cryptox stretches a master password into a master key using a
// resolved kdf.Config and computes the server authentication hash.
package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vaultkeeper/internal/kdf"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// KeySize is the length of the master key in bytes.
const KeySize = 32

// Salt normalizes the account email into the KDF salt.
func Salt(email string) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(email)))
}

// DeriveMasterKey derives the 256-bit master key from the password and salt.
// Argon2id hashes the salt with SHA-256 first and takes memory in MiB.
func DeriveMasterKey(password, salt []byte, cfg kdf.Config) ([]byte, error) {
	switch c := cfg.(type) {
	case kdf.Pbkdf2:
		return pbkdf2.Key(password, salt, c.Iterations(), KeySize, sha256.New), nil
	case kdf.Argon2id:
		hashedSalt := sha256.Sum256(salt)
		return argon2.IDKey(
			password,
			hashedSalt[:],
			uint32(c.Iterations()),
			uint32(c.MemoryMiB())*1024,
			uint8(c.Parallelism()),
			KeySize,
		), nil
	default:
		return nil, fmt.Errorf("unsupported kdf config %T", cfg)
	}
}

// MasterPasswordHash is the value sent to the identity service instead of the
// password: one PBKDF2-SHA256 round of the master key salted with the password.
func MasterPasswordHash(masterKey, password []byte) string {
	h := pbkdf2.Key(masterKey, password, 1, KeySize, sha256.New)
	return base64.StdEncoding.EncodeToString(h)
}
