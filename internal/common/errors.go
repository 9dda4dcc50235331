// Package common defines shared constants and sentinel errors used across
// client and server layers of noteshelf. Callers should use errors.Is to
// match these values and CodeOf to obtain a stable error code.
package common

import (
	"errors"
	"fmt"
)

var (
	// Category errors. Every error returned at an operation boundary wraps
	// exactly one of these.
	ErrorNotFound     = errors.New("not found")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorConflict     = errors.New("already exists")
	ErrorInternal     = errors.New("internal error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrorUnauthorized)
	ErrMissingToken = fmt.Errorf("%w: missing token", ErrorUnauthorized)
	ErrSessionEnded = fmt.Errorf("%w: session invalidated, sign in again", ErrorUnauthorized)

	// Credential errors.
	ErrPasswordIncorrect = fmt.Errorf("%w: password is incorrect", ErrorUnauthorized)
	ErrPasswordRequired  = fmt.Errorf("%w: password is required", ErrorUnauthorized)
	ErrNameRequired      = fmt.Errorf("%w: name is required", ErrorUnauthorized)

	// Account errors.
	ErrAccountNotFound        = fmt.Errorf("%w: user not found", ErrorNotFound)
	ErrUsernameTaken          = fmt.Errorf("%w: username already exists", ErrorConflict)
	ErrRegistrationClosed     = fmt.Errorf("%w: not allow register", ErrorInternal)
	ErrCannotDeleteSuperAdmin = fmt.Errorf("%w: cannot delete super admin account", ErrorForbidden)
	ErrCannotDeleteSelf       = fmt.Errorf("%w: cannot delete yourself", ErrorForbidden)
	ErrForeignAccount         = fmt.Errorf("%w: you are not allowed to access this user", ErrorUnauthorized)
	ErrForeignUpdate          = fmt.Errorf("%w: you are not allowed to modify this user", ErrorForbidden)

	// Policy errors.
	ErrRoleRequired      = fmt.Errorf("%w: insufficient role", ErrorForbidden)
	ErrDemoMode          = fmt.Errorf("%w: not allowed in demo mode", ErrorForbidden)
	ErrPermissionMissing = fmt.Errorf("%w: token is not allowed to call this operation", ErrorForbidden)

	// Linking errors.
	ErrLinkTargetInvalid = fmt.Errorf("%w: account is not available for linking", ErrorNotFound)
	ErrLinkChain         = fmt.Errorf("%w: linked accounts cannot be linked again", ErrorForbidden)

	// Two-factor errors.
	ErrInvalidTwoFactorCode  = fmt.Errorf("%w: invalid verification code", ErrorUnauthorized)
	ErrTwoFactorChallenge    = fmt.Errorf("%w: two-factor challenge not found or expired", ErrorUnauthorized)
	ErrTwoFactorNotAvailable = fmt.Errorf("%w: two-factor authentication is not configured", ErrorUnauthorized)
)

// Code is a stable, transport-independent error code.
type Code string

const (
	CodeOK           Code = "OK"
	CodeNotFound     Code = "NOT_FOUND"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeConflict     Code = "CONFLICT"
	CodeInternal     Code = "INTERNAL_SERVER_ERROR"
)

// CodeOf classifies err by the category error it wraps. Unknown errors are
// reported as CodeInternal.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrorNotFound):
		return CodeNotFound
	case errors.Is(err, ErrorUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrorForbidden):
		return CodeForbidden
	case errors.Is(err, ErrorConflict):
		return CodeConflict
	default:
		return CodeInternal
	}
}

// PublicMessage returns the part of err that is safe to show to a caller.
// Internal failures are collapsed to a generic message unless they wrap one
// of the declared internal errors.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	if CodeOf(err) == CodeInternal && !errors.Is(err, ErrRegistrationClosed) {
		return ErrorInternal.Error()
	}
	return err.Error()
}
