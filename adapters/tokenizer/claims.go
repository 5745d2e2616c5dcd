package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines standard claims with the account fields carried by a session
type SessionClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email,omitempty"`
	AccountID     string `json:"accountId"`
	Role          string `json:"role"`
	WalletAddress string `json:"walletAddress"`
	Nonce         string `json:"nonce"`
}
