package account

import (
	"context"
	"sync"

	"contactbook/internal/auth/models"
	id "contactbook/pkg/domain"
	"contactbook/pkg/platform/sentinel"
)

// InMemoryAccountStore is the account repository used when no database is
// configured. Accounts are copied in and out so callers cannot mutate
// stored state.
type InMemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[id.UserID]*models.Account
	byEmail  map[string]id.UserID
}

func New() *InMemoryAccountStore {
	return &InMemoryAccountStore{
		accounts: make(map[id.UserID]*models.Account),
		byEmail:  make(map[string]id.UserID),
	}
}

// Save inserts or replaces an account. A different account already holding
// the email is a conflict.
func (s *InMemoryAccountStore) Save(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, ok := s.byEmail[account.Email]; ok && owner != account.ID {
		return sentinel.ErrInvalidState
	}
	if prev, ok := s.accounts[account.ID]; ok && prev.Email != account.Email {
		delete(s.byEmail, prev.Email)
	}
	stored := *account
	s.accounts[account.ID] = &stored
	s.byEmail[account.Email] = account.ID
	return nil
}

func (s *InMemoryAccountStore) FindByID(_ context.Context, userID id.UserID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.accounts[userID]; ok {
		found := *a
		return &found, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryAccountStore) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := *s.accounts[userID]
	return &found, nil
}

// UpdateAvatarURL sets the avatar of the account with the given email and
// returns the updated account.
func (s *InMemoryAccountStore) UpdateAvatarURL(_ context.Context, email, avatarURL string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	a := s.accounts[userID]
	a.AvatarURL = avatarURL
	updated := *a
	return &updated, nil
}
