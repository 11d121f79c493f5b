// Package refreshtokens stores the single-use refresh tokens issued by the
// development server.
package refreshtokens

import (
	"context"
	"time"
)

type RefreshToken struct {
	Token   string
	UserID  string
	Expires time.Time
}

// Repository keeps issued refresh tokens until they are exchanged.
type Repository interface {
	Create(ctx context.Context, t RefreshToken) error
	// Consume removes token and returns it. An unknown or already consumed
	// token is common.ErrNotFound.
	Consume(ctx context.Context, token string) (RefreshToken, error)
	// DeleteExpired drops every token that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
