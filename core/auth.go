package core

import "time"

// Challenge is the sign-in challenge handed to a wallet
type Challenge struct {
	WalletAddress string // Lowercased wallet address the challenge was issued for
	Nonce         string // Nonce embedded in the message
	Message       string // Full text the wallet is expected to sign
	IssuedAt      time.Time
}

// Session represents an authenticated account session
type Session struct {
	ID            string    // Unique token identifier (jti)
	AccountID     string    // Account the session belongs to
	Email         string    // Account email, empty when not set
	Role          Role      // Role at issuance time
	WalletAddress string    // Lowercased wallet address
	Nonce         string    // Nonce that was consumed to issue the session
	IssuedAt      time.Time // When the session was created
	ExpiresAt     time.Time // When the session expires
}

// Expired reports whether the session is past its expiry at t
func (s *Session) Expired(t time.Time) bool {
	return !s.ExpiresAt.IsZero() && t.After(s.ExpiresAt)
}

// LoginResult is returned by a successful authentication
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   AccountSummary
}
