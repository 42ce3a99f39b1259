package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authcore/internal/api/apierror"
	"github.com/dtroode/authcore/internal/logger"
	"github.com/dtroode/authcore/internal/model"
)

const maxBodyBytes = 1 << 20

// ResetRequestedDetail is returned once the reset email was handed off.
const ResetRequestedDetail = "A link to reset your password has been sent to your email!"

// ResetCompletedDetail is returned after a password was replaced.
const ResetCompletedDetail = "Your password has been reset."

// AuthService defines login, password reset and private data operations.
type AuthService interface {
	Login(ctx context.Context, email, secret string) (model.BearerToken, error)
	RequestReset(ctx context.Context, email string) error
	CompleteReset(ctx context.Context, token, newSecret string) error
	Me(ctx context.Context, identityID uuid.UUID) (model.Identity, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type completeResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type meResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Handler serves the HTTP auth endpoints.
type Handler struct {
	authService    AuthService
	contextManager model.ContextManager
	pinger         Pinger
	logger         *logger.Logger
}

// NewHandler creates a new Handler. pinger may be nil.
func NewHandler(authService AuthService, contextManager model.ContextManager, pinger Pinger, logger *logger.Logger) *Handler {
	return &Handler{
		authService:    authService,
		contextManager: contextManager,
		pinger:         pinger,
		logger:         logger,
	}
}

// Token handles the OAuth2 password grant form: username is the email.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, apierror.NewBadRequest("invalid form body"))
		return
	}

	email := r.PostForm.Get("username")
	h.logger.DebugContext(r.Context(), "Auth handler: processing login request",
		"email", email)

	token, err := h.authService.Login(r.Context(), email, r.PostForm.Get("password"))
	if err != nil {
		h.logger.InfoContext(r.Context(), "Auth handler: login failed",
			"email", email,
			"error", err.Error())
		writeError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
	})
}

// RequestReset starts a password reset for the email in the body.
func (h *Handler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Email == "" {
		writeError(w, apierror.NewBadRequest("email is required"))
		return
	}

	if err := h.authService.RequestReset(r.Context(), req.Email); err != nil {
		h.logger.InfoContext(r.Context(), "Auth handler: reset request failed",
			"email", req.Email,
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detailResponse{Detail: ResetRequestedDetail})
}

// CompleteReset replaces the password using a reset token.
func (h *Handler) CompleteReset(w http.ResponseWriter, r *http.Request) {
	var req completeResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.authService.CompleteReset(r.Context(), req.Token, req.NewPassword); err != nil {
		h.logger.InfoContext(r.Context(), "Auth handler: reset completion failed",
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detailResponse{Detail: ResetCompletedDetail})
}

// Me returns the authenticated identity's private data.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identityID, ok := h.contextManager.GetIdentityIDFromContext(r.Context())
	if !ok {
		writeError(w, apierror.NewMissingAuthorizationToken())
		return
	}

	identity, err := h.authService.Me(r.Context(), identityID)
	if err != nil {
		h.logger.InfoContext(r.Context(), "Auth handler: private data request failed",
			"identity_id", identityID.String(),
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		ID:        identity.ID.String(),
		Email:     identity.Email,
		Username:  identity.Username,
		CreatedAt: identity.CreatedAt,
	})
}

// Health reports liveness and, when configured, database reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.WarnContext(r.Context(), "Health check failed",
				"error", err.Error())
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apierror.NewBadRequest("request body too large")
		}
		return apierror.NewBadRequest("invalid request body")
	}
	return nil
}
