// Package models defines the client-side domain values: signed-in accounts
// and the decrypted list projections cached per account.
package models

import "fmt"

// KdfType identifies the key-derivation algorithm. Values match the wire
// representation used by the identity service.
type KdfType int

const (
	KdfTypePbkdf2SHA256 KdfType = 0
	KdfTypeArgon2id     KdfType = 1
)

func (k KdfType) String() string {
	switch k {
	case KdfTypePbkdf2SHA256:
		return "pbkdf2"
	case KdfTypeArgon2id:
		return "argon2id"
	default:
		return fmt.Sprintf("kdf(%d)", int(k))
	}
}

// ForcePasswordResetReason explains why the user must change the master
// password before the vault can be used.
type ForcePasswordResetReason string

const (
	AdminForcePasswordReset          ForcePasswordResetReason = "adminForcePasswordReset"
	WeakMasterPasswordOnLogin        ForcePasswordResetReason = "weakMasterPasswordOnLogin"
	TDEUserWithoutPasswordHasPwReset ForcePasswordResetReason = "tdeUserWithoutPasswordHasPasswordResetPermission"
)

type KeyConnectorOption struct {
	URL string `json:"keyConnectorUrl"`
}

type TrustedDeviceOption struct {
	EncryptedPrivateKey              string `json:"encryptedPrivateKey,omitempty"`
	EncryptedUserKey                 string `json:"encryptedUserKey,omitempty"`
	HasAdminApproval                 bool   `json:"hasAdminApproval"`
	HasLoginApprovingDevice          bool   `json:"hasLoginApprovingDevice"`
	HasManageResetPasswordPermission bool   `json:"hasManageResetPasswordPermission"`
}

// DecryptionOptions lists the ways this account is able to unlock its vault.
type DecryptionOptions struct {
	HasMasterPassword bool                 `json:"hasMasterPassword"`
	KeyConnector      *KeyConnectorOption  `json:"keyConnectorOption,omitempty"`
	TrustedDevice     *TrustedDeviceOption `json:"trustedDeviceOption,omitempty"`
}

// KdfParams is the raw, possibly incomplete KDF description as delivered by
// the server. It is turned into a usable configuration by kdf.Resolve.
type KdfParams struct {
	Type        *KdfType `json:"kdfType,omitempty"`
	Iterations  *int     `json:"kdfIterations,omitempty"`
	Memory      *int     `json:"kdfMemory,omitempty"`
	Parallelism *int     `json:"kdfParallelism,omitempty"`
}

type Profile struct {
	AvatarColor              string                    `json:"avatarColor,omitempty"`
	Email                    string                    `json:"email"`
	EmailVerified            *bool                     `json:"emailVerified,omitempty"`
	ForcePasswordResetReason *ForcePasswordResetReason `json:"forcePasswordResetReason,omitempty"`
	HasPremium               *bool                     `json:"hasPremiumPersonally,omitempty"`
	KdfType                  *KdfType                  `json:"kdfType,omitempty"`
	KdfIterations            *int                      `json:"kdfIterations,omitempty"`
	KdfMemory                *int                      `json:"kdfMemory,omitempty"`
	KdfParallelism           *int                      `json:"kdfParallelism,omitempty"`
	Name                     string                    `json:"name,omitempty"`
	OrgIdentifier            string                    `json:"orgIdentifier,omitempty"`
	Stamp                    string                    `json:"stamp,omitempty"`
	DecryptionOptions        *DecryptionOptions        `json:"userDecryptionOptions,omitempty"`
	UserID                   string                    `json:"userId"`
}

func (p Profile) KdfParams() KdfParams {
	return KdfParams{
		Type:        p.KdfType,
		Iterations:  p.KdfIterations,
		Memory:      p.KdfMemory,
		Parallelism: p.KdfParallelism,
	}
}

// EnvironmentURLs are the per-account remote endpoints. Empty fields fall
// back to Base.
type EnvironmentURLs struct {
	Base     string `json:"base,omitempty"`
	API      string `json:"api,omitempty"`
	Identity string `json:"identity,omitempty"`
	Icons    string `json:"icons,omitempty"`
	WebVault string `json:"webVault,omitempty"`
	Events   string `json:"events,omitempty"`
}

// Settings is nil-able per account; nil EnvironmentURLs means the default
// environment.
type Settings struct {
	EnvironmentURLs *EnvironmentURLs `json:"environmentUrls,omitempty"`
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Account is one signed-in identity. UserID is the sole identity key:
// two values with the same UserID are the same account even if their
// tokens or profile differ.
type Account struct {
	Profile  Profile  `json:"profile"`
	Settings Settings `json:"settings"`
	Tokens   Tokens   `json:"tokens"`
}

func (a Account) ID() string { return a.Profile.UserID }

// Same reports whether a and other identify the same logical account.
func (a Account) Same(other Account) bool {
	return a.Profile.UserID == other.Profile.UserID
}

// IdentityTokenResponse is the body returned by the identity service after a
// successful password login.
type IdentityTokenResponse struct {
	AccessToken           string             `json:"access_token"`
	RefreshToken          string             `json:"refresh_token"`
	Kdf                   *KdfType           `json:"Kdf,omitempty"`
	KdfIterations         *int               `json:"KdfIterations,omitempty"`
	KdfMemory             *int               `json:"KdfMemory,omitempty"`
	KdfParallelism        *int               `json:"KdfParallelism,omitempty"`
	ForcePasswordReset    bool               `json:"ForcePasswordReset"`
	UserDecryptionOptions *DecryptionOptions `json:"UserDecryptionOptions,omitempty"`
}
