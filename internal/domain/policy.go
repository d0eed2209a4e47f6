package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-petr/campus-wallet/pkg/moneypkg"
)

var (
	// ErrPolicyViolation indicates that a spending policy denied the debit.
	ErrPolicyViolation = errors.New("policy violation")
	// ErrPolicyNotFound indicates that the account has no spending policy.
	ErrPolicyNotFound = errors.New("policy not found")
)

// SpendingPolicy holds guardian-configured limits for an account.
//
// A zero cap means the cap is not configured.
type SpendingPolicy struct {
	AccountID  string    `json:"account_id"`
	GuardianID string    `json:"guardian_id"`
	Blocked    []string  `json:"blocked"`
	DailyCap   int64     `json:"daily_cap"`
	WeeklyCap  int64     `json:"weekly_cap"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsBlocked reports whether the counterparty is in the blocked set.
func (p SpendingPolicy) IsBlocked(counterpartyID string) bool {
	for _, id := range p.Blocked {
		if id == counterpartyID {
			return true
		}
	}

	return false
}

// CheckDebitParams is the input data for a policy evaluation.
type CheckDebitParams struct {
	AccountID      string
	Amount         int64
	Category       Category
	Counterparties []string
}

// PolicyViolationError describes why a policy denied a debit.
type PolicyViolationError struct {
	Reason string
	Window string
	Cap    int64
	Usage  int64
}

func (e *PolicyViolationError) Error() string {
	if e.Cap == 0 {
		return fmt.Sprintf("%s: %s", ErrPolicyViolation, e.Reason)
	}

	return fmt.Sprintf("%s: %s (used %s of %s %s cap)",
		ErrPolicyViolation, e.Reason, moneypkg.Format(e.Usage), moneypkg.Format(e.Cap), e.Window)
}

// Is makes errors.Is(err, ErrPolicyViolation) hold.
func (e *PolicyViolationError) Is(target error) bool {
	return target == ErrPolicyViolation
}
