package model

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IdentityStore defines persistence operations for identities.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (Identity, error)
	FindByID(ctx context.Context, id uuid.UUID) (Identity, error)
	FindByResetTokenHash(ctx context.Context, tokenHash string) (Identity, error)
	Create(ctx context.Context, identity Identity) (Identity, error)
	// SetReset stores tokenHash as the pending reset, replacing any previous
	// one. Only the reset columns are written.
	SetReset(ctx context.Context, id uuid.UUID, tokenHash string, requestedAt time.Time) error
	// ConsumeReset sets passwordHash and clears the pending reset in one
	// conditional write. It returns ErrNotFound unless tokenHash is still
	// pending for id and the identity is not banned.
	ConsumeReset(ctx context.Context, id uuid.UUID, tokenHash, passwordHash string) error
	// ClearReset drops the pending reset if it is still tokenHash. It returns
	// ErrNotFound when the token was already consumed or superseded.
	ClearReset(ctx context.Context, id uuid.UUID, tokenHash string) error
}

// Identity represents a registered account.
type Identity struct {
	ID               uuid.UUID
	Email            string
	Username         string
	PasswordHash     string
	IsBanned         bool
	ResetTokenHash   *string
	ResetRequestedAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasPendingReset reports whether a reset token is waiting to be consumed.
func (i Identity) HasPendingReset() bool {
	return i.ResetTokenHash != nil && *i.ResetTokenHash != ""
}

// NormalizeEmail returns the lookup key for an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
