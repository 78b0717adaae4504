// Package common defines shared constants and sentinel errors used across
// the taskauth server and client. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrValidation         = errors.New("validation error")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStoreUnavailable   = errors.New("credential store unavailable")
	ErrInternal           = errors.New("internal error")

	// Auth errors. Every token or header failure matches ErrUnauthenticated.
	ErrUnauthenticated = errors.New("unauthenticated")
)
