package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/dtroode/authcore/internal/api/apierror"
	"github.com/dtroode/authcore/internal/api/grpc/authv1"
	"github.com/dtroode/authcore/internal/logger"
	"github.com/dtroode/authcore/internal/model"
)

// ResetRequestedMessage is returned when a reset email was handed off.
const ResetRequestedMessage = "password reset email sent"

// AuthService defines login, password reset and private data operations.
type AuthService interface {
	Login(ctx context.Context, email, secret string) (model.BearerToken, error)
	RequestReset(ctx context.Context, email string) error
	CompleteReset(ctx context.Context, token, newSecret string) error
	Me(ctx context.Context, identityID uuid.UUID) (model.Identity, error)
}

// Auth handles gRPC endpoints for authentication.
type Auth struct {
	authv1.UnimplementedAuthServer
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Login exchanges email and password for a bearer token.
func (h *Auth) Login(ctx context.Context, req *authv1.LoginRequest) (*authv1.LoginResponse, error) {
	h.logger.Debug("Auth handler: processing login request",
		"email", req.Email)

	token, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Info("Auth handler: login failed",
			"email", req.Email,
			"error", err.Error())
		return nil, handleError(err)
	}

	return &authv1.LoginResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
	}, nil
}

// RequestReset starts a password reset.
func (h *Auth) RequestReset(ctx context.Context, req *authv1.RequestResetRequest) (*authv1.RequestResetResponse, error) {
	h.logger.Debug("Auth handler: processing reset request",
		"email", req.Email)

	if err := h.authService.RequestReset(ctx, req.Email); err != nil {
		h.logger.Info("Auth handler: reset request failed",
			"email", req.Email,
			"error", err.Error())
		return nil, handleError(err)
	}

	return &authv1.RequestResetResponse{Message: ResetRequestedMessage}, nil
}

// CompleteReset sets a new password using a reset token.
func (h *Auth) CompleteReset(ctx context.Context, req *authv1.CompleteResetRequest) (*authv1.CompleteResetResponse, error) {
	h.logger.Debug("Auth handler: processing reset completion")

	if err := h.authService.CompleteReset(ctx, req.Token, req.NewPassword); err != nil {
		h.logger.Info("Auth handler: reset completion failed",
			"error", err.Error())
		return nil, handleError(err)
	}

	return &authv1.CompleteResetResponse{}, nil
}

// Me returns the authenticated identity's private data.
func (h *Auth) Me(ctx context.Context, _ *authv1.MeRequest) (*authv1.MeResponse, error) {
	identityID, ok := h.contextManager.GetIdentityIDFromContext(ctx)
	if !ok {
		return nil, handleError(apierror.NewMissingAuthorizationToken())
	}

	identity, err := h.authService.Me(ctx, identityID)
	if err != nil {
		h.logger.Info("Auth handler: private data request failed",
			"identity_id", identityID.String(),
			"error", err.Error())
		return nil, handleError(err)
	}

	return &authv1.MeResponse{
		ID:        identity.ID.String(),
		Email:     identity.Email,
		Username:  identity.Username,
		CreatedAt: identity.CreatedAt,
	}, nil
}
