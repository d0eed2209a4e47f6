package memstore

import (
	"context"

	"github.com/go-petr/campus-wallet/internal/domain"
)

// GetProfile returns the directory identity of the account.
func (s *Store) GetProfile(_ context.Context, id string) (domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return domain.Identity{}, domain.ErrDirectoryLookupFailed
	}

	return p, nil
}

// CreateProfile registers a directory identity.
func (s *Store) CreateProfile(_ context.Context, p domain.Identity) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[p.ID]; ok {
		return domain.Identity{}, domain.ErrProfileAlreadyExists
	}

	s.profiles[p.ID] = p

	return p, nil
}
