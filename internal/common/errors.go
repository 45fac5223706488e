// Package common defines shared constants and sentinel errors used across
// the server layers of BlogKeeper. Callers should use errors.Is to match
// these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")

	// Validation errors.
	ErrorValidation  = errors.New("validation error")
	ErrInvalidUpdate = errors.New("invalid update")
	ErrImageRequired = fmt.Errorf("%w: image is required", ErrorValidation)

	// Authorization gate rejections. All of them are ErrorUnauthorized to the
	// outside world; the concrete value is kept for logging and metrics.
	ErrMissingToken   = fmt.Errorf("%w: missing token", ErrorUnauthorized)
	ErrInvalidToken   = fmt.Errorf("%w: invalid token", ErrorUnauthorized)
	ErrUnknownAccount = fmt.Errorf("%w: unknown account", ErrorUnauthorized)
	ErrRevokedToken   = fmt.Errorf("%w: revoked token", ErrorUnauthorized)

	// ErrBadCredentials is returned by login for both an unknown email and a
	// wrong password.
	ErrBadCredentials = fmt.Errorf("%w: bad credentials", ErrorUnauthorized)
)
