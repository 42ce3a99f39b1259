package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenTypeBearer is the token type reported to clients.
const TokenTypeBearer = "bearer"

// TokenIssuer issues and validates bearer tokens.
type TokenIssuer interface {
	Issue(identity Identity) (BearerToken, error)
	Parse(token string) (uuid.UUID, error)
}

// BearerToken is a signed, time-limited credential for one identity.
type BearerToken struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}
