// Package auth issues and verifies the HS256 access tokens of the
// development server.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/vaultkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is what an access token says about its user. The client builds
// its account profile from these claims.
type Identity struct {
	UserID        string
	Email         string
	Name          string
	EmailVerified bool
	Premium       bool
}

// Claims carries the registered claims plus the profile fields.
type Claims struct {
	jwt.RegisteredClaims
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Premium       bool   `json:"premium"`
}

func GenerateToken(id Identity, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Email:         id.Email,
		Name:          id.Name,
		EmailVerified: id.EmailVerified,
		Premium:       id.Premium,
	})

	return token.SignedString(secretKey)
}

// GetUserIDFromToken verifies the signature and expiry of tokenString.
// An expired token yields common.ErrTokenExpired so clients know to refresh.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
