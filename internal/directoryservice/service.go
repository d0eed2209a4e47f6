// Package directoryservice resolves account identifiers to display identities.
package directoryservice

import (
	"context"
	"errors"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by directory service layer.
type Repo interface {
	GetProfile(ctx context.Context, id string) (domain.Identity, error)
	CreateProfile(ctx context.Context, p domain.Identity) (domain.Identity, error)
}

// Service facilitates directory service layer logic.
type Service struct {
	repo     Repo
	reserved map[string]string
}

// New returns directory service. Reserved maps pseudo-account ids to their fixed labels.
func New(repo Repo, reserved map[string]string) *Service {
	r := make(map[string]string, len(reserved))
	for id, label := range reserved {
		if id != "" {
			r[id] = label
		}
	}

	return &Service{repo: repo, reserved: r}
}

// IsReserved reports whether id is a system pseudo-account.
func (s *Service) IsReserved(id string) bool {
	_, ok := s.reserved[id]
	return ok
}

// Resolve returns the identity of the account.
//
// Reserved accounts resolve to their system label with the system role.
func (s *Service) Resolve(ctx context.Context, id string) (domain.Identity, error) {
	if label, ok := s.reserved[id]; ok {
		return domain.Identity{ID: id, Name: label, Role: domain.RoleSystem}, nil
	}

	p, err := s.repo.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrDirectoryLookupFailed) {
			zerolog.Ctx(ctx).Info().Str("account_id", id).Msg("directory lookup failed")
		}

		return domain.Identity{}, err
	}

	return p, nil
}

// Register adds an identity to the directory.
//
// Students and guardians may register themselves; every other registration needs an admin.
func (s *Service) Register(ctx context.Context, actorID string, p domain.Identity) (domain.Identity, error) {
	if !p.Role.IsValid() || p.Role == domain.RoleSystem || p.ID == "" || p.Name == "" {
		return domain.Identity{}, domain.ErrInvalidIdentity
	}

	if s.IsReserved(p.ID) {
		return domain.Identity{}, domain.ErrProfileAlreadyExists
	}

	selfService := actorID == p.ID && (p.Role == domain.RoleStudent || p.Role == domain.RoleGuardian)
	if !selfService {
		actor, err := s.Resolve(ctx, actorID)
		if err != nil || actor.Role != domain.RoleAdmin {
			return domain.Identity{}, domain.ErrUnauthorizedActor
		}
	}

	return s.repo.CreateProfile(ctx, p)
}

// Seed adds an identity without an acting identity, used by operator tooling.
func (s *Service) Seed(ctx context.Context, p domain.Identity) (domain.Identity, error) {
	if !p.Role.IsValid() || p.Role == domain.RoleSystem || p.ID == "" || p.Name == "" {
		return domain.Identity{}, domain.ErrInvalidIdentity
	}

	return s.repo.CreateProfile(ctx, p)
}
