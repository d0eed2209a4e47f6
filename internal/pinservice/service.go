// Package pinservice guards debits with a four digit PIN.
package pinservice

import (
	"context"
	"errors"

	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/pkg/passpkg"
	"github.com/rs/zerolog"
)

// AccountRepo provides account access needed by pin service layer.
type AccountRepo interface {
	GetAccount(ctx context.Context, id string) (domain.Account, error)
	GetOrCreateAccount(ctx context.Context, id string) (domain.Account, error)
	SetPinHash(ctx context.Context, id, pinHash string) error
}

// ResetRepo provides reset request access needed by pin service layer.
type ResetRepo interface {
	CreateResetRequest(ctx context.Context, accountID string, role domain.Role) (domain.ResetRequest, error)
	GetResetRequest(ctx context.Context, id string) (domain.ResetRequest, error)
	CompleteReset(ctx context.Context, id string) (domain.ResetRequest, error)
}

// Directory resolves the approving identity.
type Directory interface {
	Resolve(ctx context.Context, id string) (domain.Identity, error)
}

// Auditor records state-changing operations.
type Auditor interface {
	LogAction(ctx context.Context, actorID, actorName, kind string, metadata map[string]any)
}

// Service facilitates pin service layer logic.
type Service struct {
	accounts  AccountRepo
	resets    ResetRepo
	directory Directory
	audit     Auditor
}

// New returns pin service.
func New(ar AccountRepo, rr ResetRepo, dir Directory, audit Auditor) *Service {
	return &Service{accounts: ar, resets: rr, directory: dir, audit: audit}
}

// ValidFormat reports whether pin is exactly four ASCII digits.
func ValidFormat(pin string) bool {
	if len(pin) != 4 {
		return false
	}

	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}

	return true
}

// SetPin stores the hash of pin on the account, creating the account if needed.
func (s *Service) SetPin(ctx context.Context, accountID, pin string) error {
	l := zerolog.Ctx(ctx)

	if !ValidFormat(pin) {
		return domain.ErrInvalidPinFormat
	}

	if _, err := s.accounts.GetOrCreateAccount(ctx, accountID); err != nil {
		return err
	}

	hashed, err := passpkg.Hash(pin)
	if err != nil {
		l.Error().Err(err).Send()
		return err
	}

	if err := s.accounts.SetPinHash(ctx, accountID, hashed); err != nil {
		return err
	}

	s.audit.LogAction(ctx, accountID, "", domain.ActionSetPin, map[string]any{"account_id": accountID})

	return nil
}

// Verify checks pin against the stored hash. It keeps no state between calls.
func (s *Service) Verify(ctx context.Context, accountID, pin string) error {
	a, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrPinNotSet
		}

		return err
	}

	if !a.HasPin() {
		return domain.ErrPinNotSet
	}

	if err := passpkg.Check(pin, a.PinHash); err != nil {
		zerolog.Ctx(ctx).Info().Str("account_id", accountID).Msg("pin mismatch")
		return domain.ErrInvalidPin
	}

	return nil
}

// RequestReset opens a reset request for a locked-out owner.
func (s *Service) RequestReset(ctx context.Context, accountID string, role domain.Role) (domain.ResetRequest, error) {
	r, err := s.resets.CreateResetRequest(ctx, accountID, role)
	if err != nil {
		return domain.ResetRequest{}, err
	}

	s.audit.LogAction(ctx, accountID, "", domain.ActionRequestReset, map[string]any{
		"request_id": r.ID,
		"role":       r.Role,
	})

	return r, nil
}

// GetReset returns the reset request with the given id.
func (s *Service) GetReset(ctx context.Context, requestID string) (domain.ResetRequest, error) {
	return s.resets.GetResetRequest(ctx, requestID)
}

// ApproveReset clears the PIN of the requesting account. Only admins and staff may approve.
func (s *Service) ApproveReset(ctx context.Context, approverID, requestID string) (domain.ResetRequest, error) {
	approver, err := s.directory.Resolve(ctx, approverID)
	if err != nil || (approver.Role != domain.RoleAdmin && approver.Role != domain.RoleStaff) {
		return domain.ResetRequest{}, domain.ErrUnauthorizedActor
	}

	r, err := s.resets.CompleteReset(ctx, requestID)
	if err != nil {
		return domain.ResetRequest{}, err
	}

	s.audit.LogAction(ctx, approver.ID, approver.Name, domain.ActionApproveReset, map[string]any{
		"request_id": r.ID,
		"account_id": r.AccountID,
	})

	return r, nil
}
