package tokenizer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// LoadSigningKey reads a PEM encoded P-256 private key from path.
// An empty path generates an ephemeral key; tokens signed with it do not
// survive a restart.
func LoadSigningKey(path string) (key *ecdsa.PrivateKey, ephemeral bool, err error) {
	if path == "" {
		key, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, false, fmt.Errorf("failed to generate signing key: %w", err)
		}
		return key, true, nil
	}

	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read signing key: %w", err)
	}
	key, err = jwt.ParseECPrivateKeyFromPEM(pem)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse signing key: %w", err)
	}
	if key.Curve != elliptic.P256() {
		return nil, false, fmt.Errorf("signing key must be on P-256, got %s", key.Curve.Params().Name)
	}
	return key, false, nil
}
