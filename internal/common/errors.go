// Package common defines shared constants and sentinel errors used across
// client and server layers of secureshare. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors (malformed local input, never sent over the wire).
	ErrValidation      = errors.New("validation error")
	ErrEmptyPassword   = errors.New("password must not be empty")
	ErrMalformedEmail  = errors.New("malformed email address")
	ErrWeakPassword    = errors.New("password does not meet strength requirements")
	ErrInvalidShareTTL = errors.New("share ttl is not one of the allowed values")

	// Auth errors (bad credentials/code/expired session).
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidCode          = errors.New("invalid verification code")
	ErrVerificationExpired  = errors.New("verification expired")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrAlreadyExists        = errors.New("already exists")
	ErrNotPendingVerify     = errors.New("no verification in progress")
	ErrVerificationPending  = errors.New("verification already in progress")
	ErrAlreadyAuthenticated = errors.New("already authenticated")

	// Integrity errors (AEAD tag mismatch, fatal to the single decrypt call).
	ErrIntegrity = errors.New("failed to decrypt: integrity check failed")

	// Grant errors (share-link resolution).
	ErrGrantNotFound = errors.New("share grant not found")
	ErrGrantExpired  = errors.New("share grant expired")

	// Transport errors (network/storage failure, safe to retry manually).
	ErrUnavailable = errors.New("server unavailable")

	// Internal flow control.
	ErrInternal = errors.New("internal error")
)
