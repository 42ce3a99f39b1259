package model

import "errors"

// Store errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Outcome errors returned to callers of the auth service. They carry no
// internal detail and are compared with errors.Is.
var (
	ErrInvalidCredentials  = errors.New("incorrect username or password")
	ErrAccountBanned       = errors.New("account is banned")
	ErrAccountNotFound     = errors.New("no account found for email")
	ErrNotificationFailure = errors.New("unable to send password reset email; please contact the site owner")
	ErrResetTokenInvalid   = errors.New("reset token is invalid")
	ErrResetTokenExpired   = errors.New("reset token has expired")
	ErrEmptySecret         = errors.New("password cannot be empty")
)
