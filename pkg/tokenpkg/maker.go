// Package tokenpkg issues and verifies the bearer tokens that carry the requesting identity.
package tokenpkg

import (
	"fmt"
	"time"
)

// Supported token types.
const (
	TypePaseto = "paseto"
	TypeJWT    = "jwt"
)

// Maker is an interface for managing tokens.
type Maker interface {
	// CreateToken creates a new token for a specific account and duration.
	CreateToken(accountID, role string, duration time.Duration) (string, *Payload, error)

	// VerifyToken checks if the token is valid or not.
	VerifyToken(token string) (*Payload, error)
}

// NewMaker returns the maker for the configured token type.
func NewMaker(tokenType, key string) (Maker, error) {
	switch tokenType {
	case TypePaseto, "":
		return NewPasetoMaker(key)
	case TypeJWT:
		return NewJWTMaker(key)
	default:
		return nil, fmt.Errorf("unsupported token type %q", tokenType)
	}
}
