package ports

// NonceSource produces challenge nonces
type NonceSource interface {
	Nonce() (string, error)
}
