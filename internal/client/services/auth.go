package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/accounts"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/client"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/common"
	"github.com/dmitrijs2005/vaultkeeper/internal/cryptox"
	"github.com/dmitrijs2005/vaultkeeper/internal/kdf"
	"github.com/dmitrijs2005/vaultkeeper/internal/logging"
)

// AuthService signs accounts in.
//
// Contract:
//   - Login: prelogin, derive the master key with the resolved KDF, log in
//     with the password hash, then store and activate the account.
//     A KDF description that cannot be resolved fails with
//     common.ErrIncompleteKdfConfig before anything is sent.
//   - Ping: check server liveness.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) (models.Account, error)
	Ping(ctx context.Context) error
}

type authService struct {
	identity client.Identity
	store    *accounts.Store
	state    StateService
	vault    VaultService
	log      logging.Logger
}

func NewAuthService(identity client.Identity, store *accounts.Store, state StateService, vault VaultService, log logging.Logger) AuthService {
	return &authService{identity: identity, store: store, state: state, vault: vault, log: log}
}

func (a *authService) Login(ctx context.Context, email string, password []byte) (models.Account, error) {
	params, err := a.identity.Prelogin(ctx, email)
	if err != nil {
		return models.Account{}, fmt.Errorf("prelogin error: %w", err)
	}

	cfg, err := kdf.ResolveParams(params)
	if err != nil {
		return models.Account{}, err
	}

	key, err := cryptox.DeriveMasterKey(password, cryptox.Salt(email), cfg)
	if err != nil {
		return models.Account{}, err
	}
	defer common.WipeByteArray(key)

	resp, err := a.identity.Login(ctx, email, cryptox.MasterPasswordHash(key, password))
	if err != nil {
		return models.Account{}, fmt.Errorf("login error: %w", err)
	}

	acct, err := accounts.FromIdentityToken(resp)
	if err != nil {
		return models.Account{}, err
	}
	if acct.Profile.Email == "" {
		acct.Profile.Email = email
	}
	if acct.Profile.KdfType == nil {
		acct.Profile.KdfType = params.Type
		acct.Profile.KdfIterations = params.Iterations
		acct.Profile.KdfMemory = params.Memory
		acct.Profile.KdfParallelism = params.Parallelism
	}

	if err := a.store.AddOrUpdate(acct); err != nil {
		return models.Account{}, err
	}
	if err := a.state.SaveAccount(ctx, acct); err != nil {
		return models.Account{}, fmt.Errorf("account saving error: %w", err)
	}
	if err := a.vault.SetActive(ctx, acct.ID()); err != nil {
		return models.Account{}, err
	}

	a.log.Info(ctx, "signed in", "user_id", acct.ID(), "kdf", cfg.Type().String())
	return acct, nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.identity.Ping(ctx)
}
