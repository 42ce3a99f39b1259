package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"

	"github.com/dtroode/authcore/internal/api/apierror"
	"github.com/dtroode/authcore/internal/logger"
	"github.com/dtroode/authcore/internal/model"
)

// TokenService resolves identity ID from bearer tokens.
type TokenService interface {
	GetIdentityID(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticate validates bearer tokens and injects identity ID into context.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

// AuthFunc reads the bearer token from the authorization metadata, validates
// it and returns a context with the identity ID.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	tokenString, err := auth.AuthFromMD(ctx, "bearer")
	if err != nil {
		m.logger.DebugContext(ctx, "Authenticate: missing bearer token")
		return nil, apierror.NewMissingAuthorizationToken().GRPCStatus().Err()
	}

	identityID, err := m.tokenService.GetIdentityID(ctx, tokenString)
	if err != nil || identityID == uuid.Nil {
		m.logger.DebugContext(ctx, "Authenticate: rejected bearer token")
		return nil, apierror.NewInvalidAuthorizationToken().GRPCStatus().Err()
	}

	return m.contextManager.SetIdentityIDToContext(ctx, identityID), nil
}
