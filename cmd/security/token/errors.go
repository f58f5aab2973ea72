package token

import "errors"

// Public, stable errors for callers.
var (
	// ErrUnauthorized is the single outcome for every token that fails to
	// decode, whatever the underlying reason.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConfig reports unusable key material or session settings at startup.
	ErrConfig = errors.New("invalid token config")
)
