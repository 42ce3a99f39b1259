package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/authcore/internal/logger"
	"github.com/dtroode/authcore/internal/model"
)

// TokenService resolves bearer tokens presented on private endpoints.
type TokenService struct {
	issuer model.TokenIssuer
	logger *logger.Logger
}

// NewTokenService creates a TokenService backed by issuer.
func NewTokenService(issuer model.TokenIssuer, logger *logger.Logger) *TokenService {
	return &TokenService{issuer: issuer, logger: logger}
}

// GetIdentityID returns the identity a valid token was issued to.
func (s *TokenService) GetIdentityID(ctx context.Context, token string) (uuid.UUID, error) {
	identityID, err := s.issuer.Parse(token)
	if err != nil {
		s.logger.DebugContext(ctx, "Token service: rejected bearer token",
			"error", err.Error())
		return uuid.Nil, fmt.Errorf("parse token: %w", err)
	}

	return identityID, nil
}
