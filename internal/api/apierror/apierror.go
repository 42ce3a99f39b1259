// Package apierror maps auth outcomes to transport status codes.
package apierror

import (
	"errors"
	"net/http"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/authcore/internal/model"
)

// Domain is reported in gRPC error details.
const Domain = "authcore"

// APIError is the transport view of an error: status codes, a stable machine
// reason and the message shown to clients.
type APIError struct {
	GRPCCode   codes.Code
	HTTPStatus int
	Reason     string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// GRPCStatus returns the gRPC status with an ErrorInfo detail carrying the
// reason. status.FromError picks it up, so an *APIError can be returned from
// handlers and interceptors as is.
func (e *APIError) GRPCStatus() *status.Status {
	st := status.New(e.GRPCCode, e.Message)
	if detailed, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason: e.Reason,
		Domain: Domain,
	}); err == nil {
		st = detailed
	}

	return st
}

var known = []struct {
	target error
	apiErr APIError
}{
	{model.ErrInvalidCredentials, APIError{codes.Unauthenticated, http.StatusUnauthorized, "INVALID_CREDENTIALS", ""}},
	{model.ErrAccountBanned, APIError{codes.PermissionDenied, http.StatusForbidden, "ACCOUNT_BANNED", ""}},
	{model.ErrAccountNotFound, APIError{codes.NotFound, http.StatusNotFound, "ACCOUNT_NOT_FOUND", ""}},
	{model.ErrNotificationFailure, APIError{codes.Unavailable, http.StatusServiceUnavailable, "NOTIFICATION_FAILURE", ""}},
	{model.ErrResetTokenInvalid, APIError{codes.InvalidArgument, http.StatusBadRequest, "RESET_TOKEN_INVALID", ""}},
	{model.ErrResetTokenExpired, APIError{codes.FailedPrecondition, http.StatusBadRequest, "RESET_TOKEN_EXPIRED", ""}},
	{model.ErrEmptySecret, APIError{codes.InvalidArgument, http.StatusBadRequest, "EMPTY_PASSWORD", ""}},
}

// FromError returns the APIError for err. Anything that is not an auth
// outcome becomes a generic internal error with no detail.
func FromError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	for _, k := range known {
		if errors.Is(err, k.target) {
			mapped := k.apiErr
			mapped.Message = k.target.Error()
			return &mapped
		}
	}

	return NewInternal()
}

// NewInternal returns the error shown for unexpected failures.
func NewInternal() *APIError {
	return &APIError{
		GRPCCode:   codes.Internal,
		HTTPStatus: http.StatusInternalServerError,
		Reason:     "INTERNAL",
		Message:    "internal server error",
	}
}

// NewMissingAuthorizationToken is returned when a private endpoint is called
// without a bearer token.
func NewMissingAuthorizationToken() *APIError {
	return &APIError{
		GRPCCode:   codes.Unauthenticated,
		HTTPStatus: http.StatusUnauthorized,
		Reason:     "MISSING_TOKEN",
		Message:    "missing authorization token",
	}
}

// NewInvalidAuthorizationToken is returned for expired or forged tokens.
func NewInvalidAuthorizationToken() *APIError {
	return &APIError{
		GRPCCode:   codes.Unauthenticated,
		HTTPStatus: http.StatusUnauthorized,
		Reason:     "INVALID_TOKEN",
		Message:    "could not validate credentials",
	}
}

// NewBadRequest reports a malformed request.
func NewBadRequest(message string) *APIError {
	return &APIError{
		GRPCCode:   codes.InvalidArgument,
		HTTPStatus: http.StatusBadRequest,
		Reason:     "BAD_REQUEST",
		Message:    message,
	}
}
