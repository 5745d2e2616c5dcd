package core

import "errors"

var (
	// Wallet authentication
	ErrMalformedChallenge = errors.New("malformed challenge message")
	ErrInvalidCredential  = errors.New("invalid credential")
	ErrAccountNotFound    = errors.New("account not found")
	ErrNonceMismatch      = errors.New("nonce mismatch")
	ErrAccountExists      = errors.New("account already exists")

	// Session tokens
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenInvalidated = errors.New("token has been invalidated")
	ErrInvalidToken     = errors.New("invalid token")

	// Access control
	ErrInvalidRole = errors.New("invalid role")
	ErrForbidden   = errors.New("forbidden")

	// Notes and grants
	ErrNoteNotFound  = errors.New("note not found")
	ErrGrantExists   = errors.New("wallet already granted")
	ErrGrantNotFound = errors.New("grant not found")
)
