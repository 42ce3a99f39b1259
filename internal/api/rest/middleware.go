package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/dtroode/authcore/internal/api/apierror"
	"github.com/dtroode/authcore/internal/logger"
	"github.com/dtroode/authcore/internal/model"
)

// RequestIDHeader carries the request id back to the caller.
const RequestIDHeader = "X-Request-Id"

// TokenService resolves identity ID from bearer tokens.
type TokenService interface {
	GetIdentityID(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// identity ID in the request context.
func Authenticate(tokenService TokenService, contextManager model.ContextManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
				writeError(w, apierror.NewMissingAuthorizationToken())
				return
			}

			identityID, err := tokenService.GetIdentityID(r.Context(), token)
			if err != nil || identityID == uuid.Nil {
				writeError(w, apierror.NewInvalidAuthorizationToken())
				return
			}

			next.ServeHTTP(w, r.WithContext(contextManager.SetIdentityIDToContext(r.Context(), identityID)))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging logs method, path, status and duration of every request. Bodies and
// headers are never logged.
func Logging(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := ulid.Make().String()
			w.Header().Set(RequestIDHeader, requestID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", requestID,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			}

			switch {
			case rec.status >= http.StatusInternalServerError:
				logger.ErrorContext(r.Context(), "HTTP request failed", attrs...)
			case rec.status >= http.StatusBadRequest:
				logger.WarnContext(r.Context(), "HTTP request rejected", attrs...)
			default:
				logger.InfoContext(r.Context(), "HTTP request completed", attrs...)
			}
		})
	}
}
