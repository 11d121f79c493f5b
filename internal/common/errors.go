// Package common defines shared constants and sentinel errors used across
// the vaultkeeper client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Lookup errors.
	ErrNotFound = errors.New("not found")

	// Account store errors.
	ErrNoActiveAccount = errors.New("no active account")
	ErrUnknownAccount  = errors.New("unknown account")

	// KDF configuration errors. ErrIncompleteKdfConfig is a data-integrity
	// condition: the caller must re-authenticate rather than retry.
	ErrIncompleteKdfConfig = errors.New("incomplete kdf config")
	ErrUnsupportedKdf      = errors.New("unsupported kdf type")

	// Sync/cache errors.
	ErrScopeMismatch      = errors.New("account scope changed")
	ErrPartialSyncFailure = errors.New("partial sync failure")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
