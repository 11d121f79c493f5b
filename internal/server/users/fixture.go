package users

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/vaultkeeper/internal/api"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/common"
	"github.com/dmitrijs2005/vaultkeeper/internal/cryptox"
	"github.com/dmitrijs2005/vaultkeeper/internal/kdf"
	"github.com/google/uuid"
)

// Fixture is the seed file of the development server: accounts with their
// plaintext master passwords and already-decrypted vault listings.
type Fixture struct {
	Users []FixtureUser `json:"users"`
}

type FixtureUser struct {
	ID                 string             `json:"id,omitempty"`
	Email              string             `json:"email"`
	Name               string             `json:"name,omitempty"`
	Password           string             `json:"password"`
	EmailVerified      bool               `json:"emailVerified"`
	Premium            bool               `json:"premium"`
	ForcePasswordReset bool               `json:"forcePasswordReset,omitempty"`
	Kdf                models.KdfParams   `json:"kdf"`
	Ciphers            []api.Cipher       `json:"ciphers,omitempty"`
	Organizations      []api.Organization `json:"organizations,omitempty"`
	Sends              []api.Send         `json:"sends,omitempty"`
}

func LoadFixtureFile(path string) ([]User, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadFixture(f)
}

// LoadFixture decodes a fixture and derives each user's master password
// hash the same way the client does. Users without an id get a random one.
func LoadFixture(r io.Reader) ([]User, error) {
	var fx Fixture
	if err := json.NewDecoder(r).Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	out := make([]User, 0, len(fx.Users))
	for _, fu := range fx.Users {
		u, err := fu.toUser()
		if err != nil {
			return nil, fmt.Errorf("fixture user %q: %w", fu.Email, err)
		}
		out = append(out, u)
	}
	return out, nil
}

func (fu FixtureUser) toUser() (User, error) {
	cfg, err := kdf.ResolveParams(fu.Kdf)
	if err != nil {
		return User{}, err
	}

	password := []byte(fu.Password)
	key, err := cryptox.DeriveMasterKey(password, cryptox.Salt(fu.Email), cfg)
	if err != nil {
		return User{}, err
	}
	defer common.WipeByteArray(key)

	id := fu.ID
	if id == "" {
		id = uuid.NewString()
	}

	return User{
		ID:                 id,
		Email:              fu.Email,
		Name:               fu.Name,
		EmailVerified:      fu.EmailVerified,
		Premium:            fu.Premium,
		ForcePasswordReset: fu.ForcePasswordReset,
		Kdf:                fu.Kdf,
		PasswordHash:       cryptox.MasterPasswordHash(key, password),
		Ciphers:            fu.Ciphers,
		Organizations:      fu.Organizations,
		Sends:              fu.Sends,
	}, nil
}
