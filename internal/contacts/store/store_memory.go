package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"contactbook/internal/contacts/birthday"
	"contactbook/internal/contacts/models"
	id "contactbook/pkg/domain"
	"contactbook/pkg/platform/sentinel"
)

// InMemoryContactStore keeps contacts per owner. Every lookup goes through
// the owner's map, so a contact id from another account is never reachable.
type InMemoryContactStore struct {
	mu      sync.RWMutex
	byOwner map[id.UserID]map[id.ContactID]*models.Contact
}

func New() *InMemoryContactStore {
	return &InMemoryContactStore{
		byOwner: make(map[id.UserID]map[id.ContactID]*models.Contact),
	}
}

func (s *InMemoryContactStore) List(_ context.Context, userID id.UserID, filter models.Filter) ([]*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(userID, filter.Matches), nil
}

func (s *InMemoryContactStore) UpcomingBirthdays(_ context.Context, userID id.UserID, window birthday.Window) ([]*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(userID, func(c *models.Contact) bool {
		_, m, d := c.BirthDate.Date()
		return window.Contains(m, d)
	}), nil
}

func (s *InMemoryContactStore) Get(_ context.Context, userID id.UserID, contactID id.ContactID) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byOwner[userID][contactID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := *c
	return &found, nil
}

func (s *InMemoryContactStore) Create(_ context.Context, contact *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	owned, ok := s.byOwner[contact.UserID]
	if !ok {
		owned = make(map[id.ContactID]*models.Contact)
		s.byOwner[contact.UserID] = owned
	}
	if _, exists := owned[contact.ID]; exists {
		return sentinel.ErrInvalidState
	}
	stored := *contact
	owned[contact.ID] = &stored
	return nil
}

func (s *InMemoryContactStore) Update(_ context.Context, userID id.UserID, contactID id.ContactID, fields models.Fields) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byOwner[userID][contactID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c.Apply(fields)
	updated := *c
	return &updated, nil
}

func (s *InMemoryContactStore) Remove(_ context.Context, userID id.UserID, contactID id.ContactID) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owned := s.byOwner[userID]
	c, ok := owned[contactID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	delete(owned, contactID)
	if len(owned) == 0 {
		delete(s.byOwner, userID)
	}
	return c, nil
}

// collect must be called with the read lock held.
func (s *InMemoryContactStore) collect(userID id.UserID, keep func(*models.Contact) bool) []*models.Contact {
	out := make([]*models.Contact, 0)
	for _, c := range s.byOwner[userID] {
		if keep(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *models.Contact) int {
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out
}
