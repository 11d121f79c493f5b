package api

import "time"

const ServiceName = "vaultkeeper.v1.Vault"

// Full method names, as seen by interceptors.
const (
	MethodPrelogin          = "/" + ServiceName + "/Prelogin"
	MethodLogin             = "/" + ServiceName + "/Login"
	MethodRefreshToken      = "/" + ServiceName + "/RefreshToken"
	MethodPing              = "/" + ServiceName + "/Ping"
	MethodListCiphers       = "/" + ServiceName + "/ListCiphers"
	MethodListOrganizations = "/" + ServiceName + "/ListOrganizations"
	MethodListSends         = "/" + ServiceName + "/ListSends"
)

// Cipher is a vault item as listed by the server, already decrypted to the
// fields a list needs.
type Cipher struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organizationId,omitempty"`
	FolderID       string     `json:"folderId,omitempty"`
	Type           string     `json:"type"`
	Name           string     `json:"name"`
	Username       string     `json:"username,omitempty"`
	CardBrand      string     `json:"cardBrand,omitempty"`
	CardLast4      string     `json:"cardLast4,omitempty"`
	Favorite       bool       `json:"favorite"`
	Edit           bool       `json:"edit"`
	ViewPassword   bool       `json:"viewPassword"`
	DeletedDate    *time.Time `json:"deletedDate,omitempty"`
	RevisionDate   time.Time  `json:"revisionDate"`
}

type Organization struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Enabled      bool      `json:"enabled"`
	RevisionDate time.Time `json:"revisionDate"`
}

type Send struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	Disabled       bool       `json:"disabled"`
	AccessCount    int        `json:"accessCount"`
	DeletionDate   *time.Time `json:"deletionDate,omitempty"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	RevisionDate   time.Time  `json:"revisionDate"`
}

type PreloginRequest struct {
	Email string `json:"email"`
}

type LoginRequest struct {
	Email              string `json:"email"`
	MasterPasswordHash string `json:"masterPasswordHash"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type ListRequest struct{}

type ListCiphersResponse struct {
	Ciphers []Cipher `json:"ciphers"`
}

type ListOrganizationsResponse struct {
	Organizations []Organization `json:"organizations"`
}

type ListSendsResponse struct {
	Sends []Send `json:"sends"`
}
