// Package common defines shared constants and sentinel errors used across
// client and server layers of Keepsake. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrorInvalidInput = errors.New("invalid input")
	ErrInvalidName    = errors.New("invalid name")

	// Share lifecycle errors.
	ErrorExpired        = errors.New("expired")
	ErrPasswordRequired = errors.New("password required")

	// Crypto errors. A wrong key and corrupted data are indistinguishable,
	// both surface as ErrInvalidKeyOrData.
	ErrInvalidKeyOrData = errors.New("invalid key or data")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
