// Package common defines shared constants and sentinel errors used across
// client and server layers of GophAuth. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors. Client-fixable, detected before any mutation.
	ErrValidation   = errors.New("validation error")
	ErrInvalidEmail = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrInvalidName  = fmt.Errorf("%w: invalid name", ErrValidation)
	ErrWeakPassword = fmt.Errorf("%w: weak password", ErrValidation)

	// Account lifecycle errors.
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("please verify your email before logging in")

	// One-time and refresh token errors.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	// Notification errors. Internal only, never returned to callers.
	ErrDeliveryFailure = errors.New("notification delivery failed")

	// Auth errors (invalid or malformed access token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
