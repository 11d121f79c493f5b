// Package users serves the accounts of the development server: credentials,
// refresh tokens and the vault listings of every user. Accounts live in
// memory; refresh tokens go to a refreshtokens.Repository.
package users

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/vaultkeeper/internal/api"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/common"
	"github.com/dmitrijs2005/vaultkeeper/internal/logging"
	"github.com/dmitrijs2005/vaultkeeper/internal/server/auth"
	"github.com/dmitrijs2005/vaultkeeper/internal/server/repositories/refreshtokens"
	"github.com/google/uuid"
)

type User struct {
	ID                 string
	Email              string
	Name               string
	EmailVerified      bool
	Premium            bool
	ForcePasswordReset bool
	Kdf                models.KdfParams
	PasswordHash       string
	Ciphers            []api.Cipher
	Organizations      []api.Organization
	Sends              []api.Send
}

type TokenSettings struct {
	SecretKey       []byte
	AccessValidity  time.Duration
	RefreshValidity time.Duration
}

type Service struct {
	tokens TokenSettings
	log    logging.Logger

	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]*User

	refresh refreshtokens.Repository

	now func() time.Time
}

type Option func(*Service)

// WithRefreshTokens replaces the default in-memory refresh token store.
func WithRefreshTokens(r refreshtokens.Repository) Option {
	return func(s *Service) { s.refresh = r }
}

func NewService(users []User, tokens TokenSettings, log logging.Logger, opts ...Option) (*Service, error) {
	s := &Service{
		tokens:  tokens,
		log:     log,
		byID:    make(map[string]*User, len(users)),
		byEmail: make(map[string]*User, len(users)),
		refresh: refreshtokens.NewMemoryRepository(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	users = slices.Clone(users)
	for i := range users {
		u := &users[i]
		email := normalizeEmail(u.Email)
		if _, ok := s.byEmail[email]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, u.Email)
		}
		s.byEmail[email] = u
		s.byID[u.ID] = u
	}
	return s, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Prelogin returns the KDF parameters of email. Unknown addresses get the
// default parameters so the answer does not reveal which accounts exist.
func (s *Service) Prelogin(ctx context.Context, email string) models.KdfParams {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.byEmail[normalizeEmail(email)]; ok {
		return u.Kdf
	}
	t := models.KdfTypePbkdf2SHA256
	return models.KdfParams{Type: &t}
}

// Login checks the master password hash and issues a token pair.
func (s *Service) Login(ctx context.Context, email, passwordHash string) (models.IdentityTokenResponse, error) {
	s.mu.RLock()
	u, ok := s.byEmail[normalizeEmail(email)]
	s.mu.RUnlock()

	if !ok || subtle.ConstantTimeCompare([]byte(u.PasswordHash), []byte(passwordHash)) != 1 {
		s.log.Info(ctx, "login rejected", "email", email)
		return models.IdentityTokenResponse{}, ErrUnauthorized
	}

	access, refresh, err := s.issue(ctx, u)
	if err != nil {
		return models.IdentityTokenResponse{}, err
	}

	s.log.Info(ctx, "login", "user_id", u.ID)
	return models.IdentityTokenResponse{
		AccessToken:        access,
		RefreshToken:       refresh,
		Kdf:                u.Kdf.Type,
		KdfIterations:      u.Kdf.Iterations,
		KdfMemory:          u.Kdf.Memory,
		KdfParallelism:     u.Kdf.Parallelism,
		ForcePasswordReset: u.ForcePasswordReset,
		UserDecryptionOptions: &models.DecryptionOptions{
			HasMasterPassword: true,
		},
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The old refresh token
// is consumed.
func (s *Service) Refresh(ctx context.Context, token string) (api.RefreshTokenResponse, error) {
	rt, err := s.refresh.Consume(ctx, token)
	if errors.Is(err, common.ErrNotFound) {
		return api.RefreshTokenResponse{}, ErrUnauthorized
	}
	if err != nil {
		return api.RefreshTokenResponse{}, err
	}
	if !s.now().Before(rt.Expires) {
		return api.RefreshTokenResponse{}, ErrUnauthorized
	}

	u, err := s.user(rt.UserID)
	if err != nil {
		return api.RefreshTokenResponse{}, err
	}

	access, refresh, err := s.issue(ctx, u)
	if err != nil {
		return api.RefreshTokenResponse{}, err
	}
	s.log.Debug(ctx, "token refreshed", "user_id", u.ID)
	return api.RefreshTokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) issue(ctx context.Context, u *User) (access, refresh string, err error) {
	access, err = auth.GenerateToken(auth.Identity{
		UserID:        u.ID,
		Email:         u.Email,
		Name:          u.Name,
		EmailVerified: u.EmailVerified,
		Premium:       u.Premium,
	}, s.tokens.SecretKey, s.tokens.AccessValidity)
	if err != nil {
		return "", "", fmt.Errorf("generate access token: %w", err)
	}

	refresh = uuid.NewString()
	err = s.refresh.Create(ctx, refreshtokens.RefreshToken{
		Token:   refresh,
		UserID:  u.ID,
		Expires: s.now().Add(s.tokens.RefreshValidity),
	})
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// PurgeExpiredTokens drops refresh tokens that can no longer be exchanged.
func (s *Service) PurgeExpiredTokens(ctx context.Context) error {
	n, err := s.refresh.DeleteExpired(ctx, s.now())
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Debug(ctx, "expired refresh tokens purged", "count", n)
	}
	return nil
}

func (s *Service) user(id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, id)
	}
	return u, nil
}

func (s *Service) Ciphers(ctx context.Context, userID string) ([]api.Cipher, error) {
	u, err := s.user(userID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(u.Ciphers), nil
}

func (s *Service) Organizations(ctx context.Context, userID string) ([]api.Organization, error) {
	u, err := s.user(userID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(u.Organizations), nil
}

func (s *Service) Sends(ctx context.Context, userID string) ([]api.Send, error) {
	u, err := s.user(userID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(u.Sends), nil
}
