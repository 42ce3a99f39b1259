// Package identity carries the authenticated identity through request
// contexts for both transports.
package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/dtroode/authcore/internal/model"
)

type identityIDKey struct{}

var _ model.ContextManager = (*Manager)(nil)

// Manager stores and retrieves the authenticated identity ID.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetIdentityIDToContext returns a context carrying identityID.
func (m *Manager) SetIdentityIDToContext(ctx context.Context, identityID uuid.UUID) context.Context {
	return context.WithValue(ctx, identityIDKey{}, identityID)
}

// GetIdentityIDFromContext returns the identity ID set by the authentication
// middleware.
func (m *Manager) GetIdentityIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	identityID, ok := ctx.Value(identityIDKey{}).(uuid.UUID)
	if !ok || identityID == uuid.Nil {
		return uuid.Nil, false
	}
	return identityID, true
}
