package services

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/cache"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/repositories/blobs"
	"github.com/dmitrijs2005/vaultkeeper/internal/logging"
)

const (
	accountPrefix  = "account/"
	snapshotPrefix = "snapshot/"
	activeKey      = "active"
)

// StateService persists what the client needs to come back after a restart:
// signed-in accounts, the active account id and the last known good cache
// contents of every account.
//
// Stored values that no longer decode are logged and skipped; a broken
// account record behaves as if the account was never stored.
type StateService interface {
	SaveAccount(ctx context.Context, a models.Account) error
	DeleteAccount(ctx context.Context, userID string) error
	SaveActive(ctx context.Context, userID string) error
	SaveSnapshot(ctx context.Context, userID string, e cache.Entities) error
	// SaveSync stores an account and its snapshot in one atomic write.
	SaveSync(ctx context.Context, a models.Account, e cache.Entities) error
	LoadSnapshot(ctx context.Context, userID string) (cache.Entities, bool, error)
	Load(ctx context.Context) (State, error)
}

// State is the persisted account set. Accounts are in the order they were
// first saved.
type State struct {
	Accounts []models.Account
	ActiveID string
}

type storedAccount struct {
	AddedAt time.Time      `json:"addedAt"`
	Account models.Account `json:"account"`
}

type stateService struct {
	repo blobs.Repository
	log  logging.Logger
	now  func() time.Time
}

func NewStateService(repo blobs.Repository, log logging.Logger) StateService {
	return &stateService{repo: repo, log: log, now: time.Now}
}

func (s *stateService) SaveAccount(ctx context.Context, a models.Account) error {
	data, err := s.encodeAccount(ctx, a)
	if err != nil {
		return err
	}
	return s.repo.Put(ctx, accountPrefix+a.ID(), data)
}

// encodeAccount keeps the first-saved time of an already stored account.
func (s *stateService) encodeAccount(ctx context.Context, a models.Account) ([]byte, error) {
	rec := storedAccount{AddedAt: s.now().UTC(), Account: a}

	if prev, err := s.repo.Get(ctx, accountPrefix+a.ID()); err == nil && prev != nil {
		var old storedAccount
		if json.Unmarshal(prev, &old) == nil && !old.AddedAt.IsZero() {
			rec.AddedAt = old.AddedAt
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode account %s: %w", a.ID(), err)
	}
	return data, nil
}

func (s *stateService) SaveSync(ctx context.Context, a models.Account, e cache.Entities) error {
	acct, err := s.encodeAccount(ctx, a)
	if err != nil {
		return err
	}
	snap, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", a.ID(), err)
	}
	return s.repo.PutMany(ctx, map[string][]byte{
		accountPrefix + a.ID():  acct,
		snapshotPrefix + a.ID(): snap,
	})
}

func (s *stateService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, accountPrefix+userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, snapshotPrefix+userID)
}

// SaveActive records the active account id; an empty id clears it.
func (s *stateService) SaveActive(ctx context.Context, userID string) error {
	if userID == "" {
		return s.repo.Delete(ctx, activeKey)
	}
	return s.repo.Put(ctx, activeKey, []byte(userID))
}

func (s *stateService) SaveSnapshot(ctx context.Context, userID string, e cache.Entities) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", userID, err)
	}
	return s.repo.Put(ctx, snapshotPrefix+userID, data)
}

func (s *stateService) LoadSnapshot(ctx context.Context, userID string) (cache.Entities, bool, error) {
	data, err := s.repo.Get(ctx, snapshotPrefix+userID)
	if err != nil {
		return cache.Entities{}, false, err
	}
	if data == nil {
		return cache.Entities{}, false, nil
	}

	var e cache.Entities
	if err := json.Unmarshal(data, &e); err != nil {
		s.log.Warn(ctx, "skipping undecodable snapshot", "user_id", userID, "error", err)
		return cache.Entities{}, false, nil
	}
	return e, true, nil
}

func (s *stateService) Load(ctx context.Context) (State, error) {
	raw, err := s.repo.List(ctx, accountPrefix)
	if err != nil {
		return State{}, err
	}

	recs := make([]storedAccount, 0, len(raw))
	for key, data := range raw {
		var rec storedAccount
		if err := json.Unmarshal(data, &rec); err != nil {
			s.log.Warn(ctx, "skipping undecodable account", "key", key, "error", err)
			continue
		}
		if rec.Account.ID() != strings.TrimPrefix(key, accountPrefix) {
			s.log.Warn(ctx, "skipping account stored under foreign key", "key", key, "user_id", rec.Account.ID())
			continue
		}
		recs = append(recs, rec)
	}
	slices.SortFunc(recs, func(a, b storedAccount) int {
		if c := a.AddedAt.Compare(b.AddedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Account.ID(), b.Account.ID())
	})

	st := State{Accounts: make([]models.Account, 0, len(recs))}
	for _, r := range recs {
		st.Accounts = append(st.Accounts, r.Account)
	}

	active, err := s.repo.Get(ctx, activeKey)
	if err != nil {
		return State{}, err
	}
	st.ActiveID = string(active)
	if st.ActiveID != "" && !slices.ContainsFunc(st.Accounts, func(a models.Account) bool { return a.ID() == st.ActiveID }) {
		s.log.Warn(ctx, "active account is not stored, ignoring", "user_id", st.ActiveID)
		st.ActiveID = ""
	}
	return st, nil
}
