package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"contactbook/internal/auth/models"
	id "contactbook/pkg/domain"
	"contactbook/pkg/platform/sentinel"
)

type InMemoryAccountStoreSuite struct {
	suite.Suite
	store *InMemoryAccountStore
	ctx   context.Context
}

func TestInMemoryAccountStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryAccountStoreSuite))
}

func (s *InMemoryAccountStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func (s *InMemoryAccountStoreSuite) newAccount(email string) *models.Account {
	return models.NewAccount(email, "Jane Doe", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

func (s *InMemoryAccountStoreSuite) TestLookupBehavior() {
	account := s.newAccount("jane.doe@example.com")
	s.Require().NoError(s.store.Save(s.ctx, account))

	s.Run("returns account by ID when exists", func() {
		found, err := s.store.FindByID(s.ctx, account.ID)
		s.Require().NoError(err)
		s.Equal(account, found)
	})

	s.Run("returns account by email when exists", func() {
		found, err := s.store.FindByEmail(s.ctx, account.Email)
		s.Require().NoError(err)
		s.Equal(account, found)
	})

	s.Run("returns ErrNotFound when ID does not exist", func() {
		_, err := s.store.FindByID(s.ctx, id.NewUserID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound when email does not exist", func() {
		_, err := s.store.FindByEmail(s.ctx, "missing@example.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned accounts are copies", func() {
		found, err := s.store.FindByID(s.ctx, account.ID)
		s.Require().NoError(err)
		found.Username = "mutated"

		again, err := s.store.FindByID(s.ctx, account.ID)
		s.Require().NoError(err)
		s.Equal("Jane Doe", again.Username)
	})
}

func (s *InMemoryAccountStoreSuite) TestSaveRejectsDuplicateEmail() {
	s.Require().NoError(s.store.Save(s.ctx, s.newAccount("dup@example.com")))
	err := s.store.Save(s.ctx, s.newAccount("dup@example.com"))
	s.Require().ErrorIs(err, sentinel.ErrInvalidState)
}

func (s *InMemoryAccountStoreSuite) TestUpdateAvatarURL() {
	account := s.newAccount("avatar@example.com")
	s.Require().NoError(s.store.Save(s.ctx, account))

	s.Run("sets the url and returns the updated account", func() {
		updated, err := s.store.UpdateAvatarURL(s.ctx, account.Email, "https://img.example.com/a.png?v=2")
		s.Require().NoError(err)
		s.Equal("https://img.example.com/a.png?v=2", updated.AvatarURL)
		s.Equal(account.ID, updated.ID)

		found, err := s.store.FindByEmail(s.ctx, account.Email)
		s.Require().NoError(err)
		s.Equal(updated.AvatarURL, found.AvatarURL)
	})

	s.Run("unknown email is not found", func() {
		_, err := s.store.UpdateAvatarURL(s.ctx, "ghost@example.com", "https://x")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
