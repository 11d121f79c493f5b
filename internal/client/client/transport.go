package client

import (
	"context"

	"github.com/dmitrijs2005/vaultkeeper/internal/api"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
)

// The wire shapes of the listed collections.
type (
	RawItem = api.Cipher
	RawOrg  = api.Organization
	RawSend = api.Send
)

// Transport fetches the collections of one account. Implementations must be
// safe for concurrent use.
type Transport interface {
	FetchVaultItems(ctx context.Context, accountID string) ([]RawItem, error)
	FetchOrganizations(ctx context.Context, accountID string) ([]RawOrg, error)
	FetchSends(ctx context.Context, accountID string) ([]RawSend, error)
}

type Identity interface {
	Prelogin(ctx context.Context, email string) (models.KdfParams, error)
	Login(ctx context.Context, email, passwordHash string) (models.IdentityTokenResponse, error)
	Ping(ctx context.Context) error
}

// TokenSource supplies and stores the token pair of each signed-in account.
type TokenSource interface {
	Tokens(userID string) (models.Tokens, error)
	UpdateTokens(userID string, t models.Tokens) error
}

type accountKey struct{}

// WithAccount marks ctx so that calls made with it are authorized as userID.
func WithAccount(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, accountKey{}, userID)
}

func accountFrom(ctx context.Context) string {
	id, _ := ctx.Value(accountKey{}).(string)
	return id
}
