package core

import "time"

// PrivateWallet is an admin-issued grant giving a wallet access to private features
type PrivateWallet struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"walletAddress"`
	GrantedBy     string    `json:"grantedBy"` // Account id of the granting admin
	CreatedAt     time.Time `json:"createdAt"`
}
