package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/dtroode/authcore/internal/credential"
	"github.com/dtroode/authcore/internal/errutil"
	"github.com/dtroode/authcore/internal/gate"
	"github.com/dtroode/authcore/internal/logger"
	"github.com/dtroode/authcore/internal/metrics"
	"github.com/dtroode/authcore/internal/model"
)

// Outcome labels recorded by the auth service counters.
const (
	outcomeInvalidCredentials  = "invalid_credentials"
	outcomeBanned              = "banned"
	outcomeNotFound            = "not_found"
	outcomeNotificationFailure = "notification_failure"
	outcomeInvalidToken        = "invalid_token"
	outcomeExpiredToken        = "expired_token"
)

// Auth composes identity lookup, the account gate, credential verification,
// token issuance and the reset workflow into the user-facing operations.
type Auth struct {
	identities model.IdentityStore
	tokens     model.TokenIssuer
	reset      *ResetWorkflow
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

// NewAuth creates a new Auth service.
func NewAuth(
	identities model.IdentityStore,
	tokens model.TokenIssuer,
	reset *ResetWorkflow,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		identities: identities,
		tokens:     tokens,
		reset:      reset,
		metrics:    metrics,
		logger:     logger,
	}
}

// Login exchanges an email and password for a bearer token.
//
// Unknown emails and wrong passwords both return model.ErrInvalidCredentials.
// A banned identity returns model.ErrAccountBanned before the password is
// checked.
func (a *Auth) Login(ctx context.Context, email, secret string) (model.BearerToken, error) {
	email = model.NormalizeEmail(email)

	a.logger.Debug("Auth service: starting login",
		"email", email)

	identity, lookupErr := a.identities.FindByEmail(ctx, email)
	decision, err := gate.Admit(identity, lookupErr)
	if err != nil {
		err = oops.Code("IDENTITY_LOOKUP_FAILED").
			With("operation", "FindByEmail").
			Wrap(err)
		errutil.LogError(a.logger.Logger, "Auth service: failed to get identity by email", err)
		a.metrics.LoginTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return model.BearerToken{}, err
	}

	switch decision {
	case gate.NotFound:
		credential.Verify(secret, credential.DummyHash)
		a.logger.Info("Auth service: login failed",
			"email", email,
			"reason", decision.String())
		a.metrics.LoginTotal.WithLabelValues(outcomeInvalidCredentials).Inc()
		return model.BearerToken{}, model.ErrInvalidCredentials
	case gate.Banned:
		a.logger.Info("Auth service: login refused for banned identity",
			"identity_id", identity.ID.String())
		a.metrics.LoginTotal.WithLabelValues(outcomeBanned).Inc()
		return model.BearerToken{}, model.ErrAccountBanned
	}

	if !credential.Verify(secret, identity.PasswordHash) {
		a.logger.Info("Auth service: login failed",
			"identity_id", identity.ID.String(),
			"reason", "password_mismatch")
		a.metrics.LoginTotal.WithLabelValues(outcomeInvalidCredentials).Inc()
		return model.BearerToken{}, model.ErrInvalidCredentials
	}

	token, err := a.tokens.Issue(identity)
	if err != nil {
		err = oops.Code("TOKEN_ISSUE_FAILED").
			With("identity_id", identity.ID.String()).
			Wrap(err)
		errutil.LogError(a.logger.Logger, "Auth service: failed to issue token", err)
		a.metrics.LoginTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return model.BearerToken{}, err
	}

	a.logger.Info("Auth service: login completed successfully",
		"identity_id", identity.ID.String())
	a.metrics.LoginTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()

	return token, nil
}

// RequestReset starts the password reset workflow for email.
//
// Unlike Login, an unknown email is reported as model.ErrAccountNotFound.
func (a *Auth) RequestReset(ctx context.Context, email string) error {
	email = model.NormalizeEmail(email)

	a.logger.Debug("Auth service: starting password reset request",
		"email", email)

	identity, lookupErr := a.identities.FindByEmail(ctx, email)
	decision, err := gate.Admit(identity, lookupErr)
	if err != nil {
		err = oops.Code("IDENTITY_LOOKUP_FAILED").
			With("operation", "FindByEmail").
			Wrap(err)
		errutil.LogError(a.logger.Logger, "Auth service: failed to get identity by email", err)
		a.metrics.ResetRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return err
	}

	switch decision {
	case gate.Banned:
		a.logger.Info("Auth service: password reset refused for banned identity",
			"identity_id", identity.ID.String())
		a.metrics.ResetRequestsTotal.WithLabelValues(outcomeBanned).Inc()
		return model.ErrAccountBanned
	case gate.NotFound:
		a.logger.Info("Auth service: password reset requested for unknown email",
			"email", email)
		a.metrics.ResetRequestsTotal.WithLabelValues(outcomeNotFound).Inc()
		return model.ErrAccountNotFound
	}

	if err := a.reset.Begin(ctx, identity); err != nil {
		if errors.Is(err, model.ErrNotificationFailure) {
			a.metrics.ResetRequestsTotal.WithLabelValues(outcomeNotificationFailure).Inc()
		} else {
			a.metrics.ResetRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		}
		return err
	}

	a.metrics.ResetRequestsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()

	return nil
}

// CompleteReset consumes a reset token and sets a new password.
func (a *Auth) CompleteReset(ctx context.Context, token, newSecret string) error {
	err := a.reset.Complete(ctx, token, newSecret)

	switch {
	case err == nil:
		a.metrics.ResetCompleteTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	case errors.Is(err, model.ErrResetTokenInvalid), errors.Is(err, model.ErrEmptySecret):
		a.metrics.ResetCompleteTotal.WithLabelValues(outcomeInvalidToken).Inc()
	case errors.Is(err, model.ErrResetTokenExpired):
		a.metrics.ResetCompleteTotal.WithLabelValues(outcomeExpiredToken).Inc()
	case errors.Is(err, model.ErrAccountBanned):
		a.metrics.ResetCompleteTotal.WithLabelValues(outcomeBanned).Inc()
	default:
		a.metrics.ResetCompleteTotal.WithLabelValues(metrics.OutcomeError).Inc()
	}

	return err
}

// Me returns the private view of an authenticated identity. Banned identities
// are refused even when they hold a valid token.
func (a *Auth) Me(ctx context.Context, identityID uuid.UUID) (model.Identity, error) {
	identity, lookupErr := a.identities.FindByID(ctx, identityID)
	decision, err := gate.Admit(identity, lookupErr)
	if err != nil {
		err = oops.Code("IDENTITY_LOOKUP_FAILED").
			With("operation", "FindByID").
			With("identity_id", identityID.String()).
			Wrap(err)
		errutil.LogError(a.logger.Logger, "Auth service: failed to get identity by id", err)
		return model.Identity{}, err
	}

	if err := decision.Err(model.ErrAccountNotFound); err != nil {
		a.logger.Info("Auth service: private data refused",
			"identity_id", identityID.String(),
			"reason", decision.String())
		return model.Identity{}, err
	}

	return identity, nil
}
