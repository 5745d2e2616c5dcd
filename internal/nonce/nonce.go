// Package nonce generates the alphanumeric nonces embedded in sign-in challenges.
package nonce

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// Alphabet is the set nonce characters are drawn from
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// DefaultLength is the length of a challenge nonce
	DefaultLength = 10
)

// Generator draws nonces uniformly from Alphabet using crypto/rand
type Generator struct {
	length int
}

// NewGenerator returns a generator producing nonces of the given length.
// A non-positive length selects DefaultLength.
func NewGenerator(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{length: length}
}

// Nonce returns a fresh nonce
func (g *Generator) Nonce() (string, error) {
	max := big.NewInt(int64(len(Alphabet)))
	buf := make([]byte, g.length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate nonce: %w", err)
		}
		buf[i] = Alphabet[n.Int64()]
	}
	return string(buf), nil
}
