package accounts

import (
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

// FromIdentityToken builds an account from a login response. Profile fields
// come from the access token payload. The signature is not verified.
func FromIdentityToken(resp models.IdentityTokenResponse) (models.Account, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(resp.AccessToken, claims); err != nil {
		return models.Account{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return models.Account{}, fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}

	p := models.Profile{
		UserID:            sub,
		Email:             stringClaim(claims, "email"),
		Name:              stringClaim(claims, "name"),
		EmailVerified:     boolClaim(claims, "email_verified"),
		HasPremium:        boolClaim(claims, "premium"),
		KdfType:           resp.Kdf,
		KdfIterations:     resp.KdfIterations,
		KdfMemory:         resp.KdfMemory,
		KdfParallelism:    resp.KdfParallelism,
		DecryptionOptions: resp.UserDecryptionOptions,
	}
	if resp.ForcePasswordReset {
		r := models.AdminForcePasswordReset
		p.ForcePasswordResetReason = &r
	}

	return models.Account{
		Profile: p,
		Tokens: models.Tokens{
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
		},
	}, nil
}

func stringClaim(c jwt.MapClaims, key string) string {
	s, _ := c[key].(string)
	return s
}

// boolClaim accepts JSON booleans as well as "true"/"false" strings.
func boolClaim(c jwt.MapClaims, key string) *bool {
	switch v := c[key].(type) {
	case bool:
		return &v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil
		}
		return &b
	default:
		return nil
	}
}
