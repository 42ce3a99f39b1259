package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/dtroode/authcore/internal/diagnostic"
	"github.com/dtroode/authcore/internal/errutil"
	"github.com/dtroode/authcore/internal/gate"
	"github.com/dtroode/authcore/internal/logger"
	"github.com/dtroode/authcore/internal/model"
)

// Reset notification data keys.
const (
	ResetDataToken = "reset_token"
	ResetDataEmail = "email"
)

// PasswordHasher produces stored password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// ResetOptions configures the reset workflow.
type ResetOptions struct {
	// TTL bounds how long a pending token may be consumed after it was issued.
	TTL time.Duration
	// TemplateID is passed to the dispatcher with every reset notification.
	TemplateID string
}

// ResetWorkflow issues and consumes single-use password reset tokens.
//
// Only the SHA-256 digest of a token is stored, one per identity, so issuing a
// new token supersedes the previous one and consuming a token clears it.
type ResetWorkflow struct {
	identities model.IdentityStore
	dispatcher model.Dispatcher
	fallback   diagnostic.ResetTokenFallback
	hasher     PasswordHasher
	opts       ResetOptions
	logger     *logger.Logger

	now      func() time.Time
	newToken func() string
}

// NewResetWorkflow creates a ResetWorkflow. A nil fallback disables the
// diagnostic delivery path.
func NewResetWorkflow(
	identities model.IdentityStore,
	dispatcher model.Dispatcher,
	fallback diagnostic.ResetTokenFallback,
	hasher PasswordHasher,
	opts ResetOptions,
	logger *logger.Logger,
) *ResetWorkflow {
	if fallback == nil {
		fallback = diagnostic.Noop{}
	}

	return &ResetWorkflow{
		identities: identities,
		dispatcher: dispatcher,
		fallback:   fallback,
		hasher:     hasher,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
		newToken:   uuid.NewString,
	}
}

// Begin generates a token for identity, stores its digest and dispatches the
// plaintext token to the identity's email. Only the reset state is written,
// so a stale identity snapshot cannot roll back a password.
//
// A rejected notification leaves the token pending and returns
// model.ErrNotificationFailure.
func (w *ResetWorkflow) Begin(ctx context.Context, identity model.Identity) error {
	token := w.newToken()
	digest := hashResetToken(token)
	requestedAt := w.now().UTC()

	if err := w.identities.SetReset(ctx, identity.ID, digest, requestedAt); err != nil {
		err = oops.Code("RESET_REQUEST_FAILED").
			With("operation", "SetReset").
			With("identity_id", identity.ID.String()).
			Wrap(err)
		errutil.LogError(w.logger.Logger, "Reset workflow: failed to store reset token", err)
		return err
	}

	w.logger.Debug("Reset workflow: reset token stored",
		"identity_id", identity.ID.String())

	err := w.dispatcher.Send(ctx, model.Notification{
		Recipient:  identity.Email,
		TemplateID: w.opts.TemplateID,
		Data: map[string]string{
			ResetDataToken: token,
			ResetDataEmail: identity.Email,
		},
	})
	if err != nil {
		w.logger.Warn("Reset workflow: reset notification rejected",
			"identity_id", identity.ID.String(),
			"error", err.Error())
		w.fallback.Emit(ctx, identity.Email, token)
		return model.ErrNotificationFailure
	}

	w.logger.Info("Reset workflow: reset notification dispatched",
		"identity_id", identity.ID.String())

	return nil
}

// Complete consumes token and replaces the identity's password with newSecret.
//
// The final write is conditional on the digest still being pending, so a
// token consumed or superseded after the lookup is reported as
// model.ErrResetTokenInvalid.
func (w *ResetWorkflow) Complete(ctx context.Context, token, newSecret string) error {
	if newSecret == "" {
		return model.ErrEmptySecret
	}
	if token == "" {
		return model.ErrResetTokenInvalid
	}

	digest := hashResetToken(token)

	identity, lookupErr := w.identities.FindByResetTokenHash(ctx, digest)
	decision, err := gate.Admit(identity, lookupErr)
	if err != nil {
		err = oops.Code("RESET_COMPLETE_FAILED").
			With("operation", "FindByResetTokenHash").
			Wrap(err)
		errutil.LogError(w.logger.Logger, "Reset workflow: failed to look up reset token", err)
		return err
	}

	if decision == gate.NotFound {
		w.logger.Info("Reset workflow: unknown reset token presented")
		return model.ErrResetTokenInvalid
	}

	if w.expired(identity) {
		err := w.identities.ClearReset(ctx, identity.ID, digest)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			err = oops.Code("RESET_COMPLETE_FAILED").
				With("operation", "ClearReset").
				With("identity_id", identity.ID.String()).
				Wrap(err)
			errutil.LogError(w.logger.Logger, "Reset workflow: failed to clear expired reset token", err)
			return err
		}
		w.logger.Info("Reset workflow: expired reset token cleared",
			"identity_id", identity.ID.String())
		return model.ErrResetTokenExpired
	}

	if decision == gate.Banned {
		w.logger.Info("Reset workflow: reset completion refused for banned identity",
			"identity_id", identity.ID.String())
		return model.ErrAccountBanned
	}

	hash, err := w.hasher.Hash(newSecret)
	if err != nil {
		err = oops.Code("RESET_COMPLETE_FAILED").
			With("operation", "Hash").
			With("identity_id", identity.ID.String()).
			Wrap(err)
		errutil.LogError(w.logger.Logger, "Reset workflow: failed to hash new password", err)
		return err
	}

	if err := w.identities.ConsumeReset(ctx, identity.ID, digest, hash); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			w.logger.Info("Reset workflow: reset token consumed concurrently",
				"identity_id", identity.ID.String())
			return model.ErrResetTokenInvalid
		}
		err = oops.Code("RESET_COMPLETE_FAILED").
			With("operation", "ConsumeReset").
			With("identity_id", identity.ID.String()).
			Wrap(err)
		errutil.LogError(w.logger.Logger, "Reset workflow: failed to store new password", err)
		return err
	}

	w.logger.Info("Reset workflow: password reset completed",
		"identity_id", identity.ID.String())

	return nil
}

func (w *ResetWorkflow) expired(identity model.Identity) bool {
	if identity.ResetRequestedAt == nil {
		return true
	}
	return w.now().Sub(*identity.ResetRequestedAt) > w.opts.TTL
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
