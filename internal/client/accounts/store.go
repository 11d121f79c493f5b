// Package accounts holds the set of signed-in accounts and the pointer to
// the one that is currently active.
package accounts

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/common"
	"github.com/dmitrijs2005/vaultkeeper/internal/logging"
)

// SwitchListener is called whenever the active account changes, including
// when it is cleared by Remove (to is then the zero scope).
type SwitchListener func(from, to models.Scope)

type Store struct {
	mu         sync.RWMutex
	accounts   map[string]models.Account
	order      []string
	active     string
	generation uint64
	listeners  []SwitchListener
	log        logging.Logger
}

func NewStore(log logging.Logger) *Store {
	return &Store{
		accounts: make(map[string]models.Account),
		log:      log,
	}
}

// OnSwitch registers fn. Listeners run synchronously, in registration order,
// while the store's write lock is held: they must not call back into the
// store.
func (s *Store) OnSwitch(fn SwitchListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// AddOrUpdate inserts a new account or replaces the stored value for the same
// user id. The active pointer is left alone.
func (s *Store) AddOrUpdate(a models.Account) error {
	id := a.ID()
	if id == "" {
		return ErrMissingUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		s.order = append(s.order, id)
	}
	s.accounts[id] = a
	return nil
}

// UpdateTokens replaces only the token pair of a known account.
func (s *Store) UpdateTokens(userID string, t models.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[userID]
	if !ok {
		return fmt.Errorf("update tokens %s: %w", userID, common.ErrUnknownAccount)
	}
	a.Tokens = t
	s.accounts[userID] = a
	return nil
}

// Tokens returns the current token pair of userID.
func (s *Store) Tokens(userID string) (models.Tokens, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[userID]
	if !ok {
		return models.Tokens{}, fmt.Errorf("tokens %s: %w", userID, common.ErrUnknownAccount)
	}
	return a.Tokens, nil
}

// Remove deletes the account. Removing the active account clears the active
// pointer and notifies listeners.
func (s *Store) Remove(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[userID]; !ok {
		return fmt.Errorf("remove %s: %w", userID, common.ErrUnknownAccount)
	}

	delete(s.accounts, userID)
	for i, id := range s.order {
		if id == userID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	if s.active == userID {
		s.switchLocked("")
	}
	return nil
}

// SetActive makes userID the active account. Selecting the account that is
// already active does nothing.
func (s *Store) SetActive(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[userID]; !ok {
		return fmt.Errorf("set active %s: %w", userID, common.ErrUnknownAccount)
	}
	if s.active == userID {
		return nil
	}
	s.switchLocked(userID)
	return nil
}

func (s *Store) switchLocked(to string) {
	from := s.scopeLocked()
	s.active = to
	s.generation++
	next := s.scopeLocked()

	s.log.Info(context.Background(), "active account changed", "from", from.String(), "to", next.String())
	for _, fn := range s.listeners {
		fn(from, next)
	}
}

func (s *Store) scopeLocked() models.Scope {
	if s.active == "" {
		return models.Scope{}
	}
	return models.Scope{UserID: s.active, Generation: s.generation}
}

// Scope identifies the active account together with the switch generation.
func (s *Store) Scope() (models.Scope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == "" {
		return models.Scope{}, common.ErrNoActiveAccount
	}
	return s.scopeLocked(), nil
}

// ActiveAccount returns ErrNoActiveAccount both when the store is empty and
// when nothing is selected.
func (s *Store) ActiveAccount() (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == "" {
		return models.Account{}, common.ErrNoActiveAccount
	}
	return s.accounts[s.active], nil
}

func (s *Store) ActiveID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, s.active != ""
}

// Account looks up a stored account by user id.
func (s *Store) Account(userID string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[userID]
	if !ok {
		return models.Account{}, fmt.Errorf("account %s: %w", userID, common.ErrUnknownAccount)
	}
	return a, nil
}

// AllAccounts returns the accounts in the order they were first added.
func (s *Store) AllAccounts() []models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Account, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.accounts[id])
	}
	return out
}
