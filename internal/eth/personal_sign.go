// Package eth holds the Ethereum signature helpers used by wallet sign-in.
package eth

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the length of an R || S || V signature
const SignatureLength = crypto.SignatureLength

var (
	ErrSignatureLength   = errors.New("signature must be 65 bytes")
	ErrSignatureEncoding = errors.New("signature is not valid hex")
	ErrRecoveryID        = errors.New("invalid signature recovery id")
)

// DecodeSignature decodes a hex signature, with or without the 0x prefix,
// and normalizes the recovery id to 0/1.
func DecodeSignature(signature string) ([]byte, error) {
	s := strings.TrimSpace(signature)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	sig, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureEncoding, err)
	}
	if len(sig) != SignatureLength {
		return nil, ErrSignatureLength
	}

	// Wallets emit V as 27/28 (legacy) while go-ethereum expects 0/1
	switch v := sig[crypto.RecoveryIDOffset]; {
	case v == 27 || v == 28:
		sig[crypto.RecoveryIDOffset] = v - 27
	case v == 0 || v == 1:
	default:
		return nil, ErrRecoveryID
	}
	return sig, nil
}

// RecoverAddress recovers the address that personal_sign'ed message
func RecoverAddress(message []byte, signature string) (common.Address, error) {
	sig, err := DecodeSignature(signature)
	if err != nil {
		return common.Address{}, err
	}

	pub, err := crypto.SigToPub(accounts.TextHash(message), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifyAddress reports whether signature over message was produced by address.
// Addresses compare case-insensitively.
func VerifyAddress(message []byte, signature string, address string) (bool, error) {
	recovered, err := RecoverAddress(message, signature)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(recovered.Hex(), strings.TrimSpace(address)), nil
}

// SignMessage personal_sign's message with key and returns the 0x-prefixed
// signature with a 27/28 recovery id, as a browser wallet would.
func SignMessage(key *ecdsa.PrivateKey, message []byte) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash(message), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}
