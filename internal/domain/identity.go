package domain

import "errors"

var (
	// ErrDirectoryLookupFailed indicates that the account identifier did not resolve to an identity.
	ErrDirectoryLookupFailed = errors.New("directory lookup failed")
	// ErrUnauthorizedActor indicates that the acting identity may not perform the operation.
	ErrUnauthorizedActor = errors.New("unauthorized actor")
	// ErrProfileAlreadyExists indicates that the identifier is already registered.
	ErrProfileAlreadyExists = errors.New("profile already exists")
	// ErrInvalidIdentity indicates a profile without id or name, or with an unsupported role.
	ErrInvalidIdentity = errors.New("invalid identity")
)

// Role is the directory role of an identity.
type Role string

// Supported roles. Students are the most restricted role and the only one subject to spending policies.
const (
	RoleStudent  Role = "student"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
	RoleGuardian Role = "guardian"
	RoleSchool   Role = "school"
	RoleSystem   Role = "system"
)

// IsValid returns true if the role is supported.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin, RoleGuardian, RoleSchool, RoleSystem:
		return true
	default:
		return false
	}
}

// Identity is the uniform shape the directory resolves an account identifier to.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}
