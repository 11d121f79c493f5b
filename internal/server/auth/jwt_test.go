package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/accounts"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	tok, err := GenerateToken(Identity{UserID: "user-123", Email: "a@example.org"}, secret, time.Hour)
	require.NoError(t, err)

	userID, err := GetUserIDFromToken(tok, secret)
	require.NoError(t, err)
	require.Equal(t, "user-123", userID)
}

func TestGetUserIDFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken(Identity{UserID: "u1"}, secret, -time.Minute)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, secret)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestGetUserIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken(Identity{UserID: "u2"}, []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, []byte("wrong-secret"))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetUserIDFromToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := GetUserIDFromToken("not.a.jwt", []byte("k"))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetUserIDFromToken_NoSubject(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, secret)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetUserIDFromToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, []byte("k"))
	require.ErrorIs(t, err, ErrInvalidToken)
}

// The client reads its profile straight from these claims.
func TestGenerateToken_ReadableByClient(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken(Identity{
		UserID:        "u1",
		Email:         "alice@example.org",
		Name:          "Alice",
		EmailVerified: true,
		Premium:       true,
	}, []byte("k"), time.Hour)
	require.NoError(t, err)

	acct, err := accounts.FromIdentityToken(models.IdentityTokenResponse{AccessToken: tok, RefreshToken: "r"})
	require.NoError(t, err)
	require.Equal(t, "u1", acct.ID())
	require.Equal(t, "alice@example.org", acct.Profile.Email)
	require.Equal(t, "Alice", acct.Profile.Name)
	require.NotNil(t, acct.Profile.EmailVerified)
	require.True(t, *acct.Profile.EmailVerified)
	require.NotNil(t, acct.Profile.HasPremium)
	require.True(t, *acct.Profile.HasPremium)
}
