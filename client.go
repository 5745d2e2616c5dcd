// Package walletgate is a Go client for the walletgate sign-in API.
package walletgate

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/internal/eth"
)

// Client represents the public interface for interacting with the sign-in service
type Client interface {
	// Challenge asks the server for a message to sign
	Challenge(ctx context.Context, walletAddress string) (*Challenge, error)

	// Login submits a signed message and returns a session
	Login(ctx context.Context, signature, message string) (*Session, error)

	// SignIn runs Challenge and Login with the given signer
	SignIn(ctx context.Context, signer Signer) (*Session, error)

	// Me returns the account behind a session token
	Me(ctx context.Context, token string) (*core.AccountSummary, error)

	// Logout revokes a session token
	Logout(ctx context.Context, token string) error
}

// Signer personal_sign's messages on behalf of a wallet
type Signer interface {
	Address() string
	SignMessage(message []byte) (string, error)
}

// KeySigner signs with an in-process private key
type KeySigner struct {
	key *ecdsa.PrivateKey
}

func NewKeySigner(key *ecdsa.PrivateKey) *KeySigner {
	return &KeySigner{key: key}
}

func (s *KeySigner) Address() string {
	return crypto.PubkeyToAddress(s.key.PublicKey).Hex()
}

func (s *KeySigner) SignMessage(message []byte) (string, error) {
	return eth.SignMessage(s.key, message)
}

// Challenge is the server's answer to a challenge request
type Challenge struct {
	Nonce         string `json:"nonce"`
	Message       string `json:"message"`
	WalletAddress string `json:"walletAddress"`
}

// Session is the result of a successful login
type Session struct {
	Token     string              `json:"token"`
	TokenType string              `json:"tokenType"`
	ExpiresAt time.Time           `json:"expiresAt"`
	Account   core.AccountSummary `json:"account"`
}

// HTTPClient talks to a walletgate server over HTTP
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL. A nil httpClient uses
// a client with a 10 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) Challenge(ctx context.Context, walletAddress string) (*Challenge, error) {
	var out Challenge
	err := c.do(ctx, http.MethodPost, "/auth/challenge", "", map[string]string{"walletAddress": walletAddress}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Login(ctx context.Context, signature, message string) (*Session, error) {
	var out Session
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{"signature": signature, "message": message}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) SignIn(ctx context.Context, signer Signer) (*Session, error) {
	ch, err := c.Challenge(ctx, signer.Address())
	if err != nil {
		return nil, err
	}
	sig, err := signer.SignMessage([]byte(ch.Message))
	if err != nil {
		return nil, fmt.Errorf("failed to sign challenge: %w", err)
	}
	return c.Login(ctx, sig, ch.Message)
}

func (c *HTTPClient) Me(ctx context.Context, token string) (*core.AccountSummary, error) {
	var out struct {
		Account core.AccountSummary `json:"account"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out.Account, nil
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
