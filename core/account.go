package core

import (
	"strings"
	"time"
)

// Role is the coarse access tier of an account
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole converts a string to a Role
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account is the persistent record of a wallet that requested a challenge.
// WalletAddress is always lowercase.
type Account struct {
	ID            string
	WalletAddress string
	PendingNonce  string
	Role          Role
	Email         string
	LastLogin     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AccountSummary is the public view of an account
type AccountSummary struct {
	ID            string     `json:"id"`
	WalletAddress string     `json:"walletAddress"`
	Email         string     `json:"email,omitempty"`
	Role          Role       `json:"role"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
}

// Summary returns the public view of the account
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:            a.ID,
		WalletAddress: a.WalletAddress,
		Email:         a.Email,
		Role:          a.Role,
		LastLogin:     a.LastLogin,
	}
}

// NormalizeAddress lowercases and trims a wallet address
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
