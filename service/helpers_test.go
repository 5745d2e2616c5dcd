package service

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/walletgate/adapters/store"
	"github.com/layer-3/walletgate/adapters/tokenizer"
	"github.com/layer-3/walletgate/internal/eth"
)

type publishedEvent struct {
	kind    string
	address string
	detail  string
	granted bool
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishLogin(ctx context.Context, address string, accountID string) error {
	return p.record(publishedEvent{kind: "login", address: address, detail: accountID})
}

func (p *recordingPublisher) PublishLogout(ctx context.Context, address string, tokenID string) error {
	return p.record(publishedEvent{kind: "logout", address: address, detail: tokenID})
}

func (p *recordingPublisher) PublishAccessChanged(ctx context.Context, address string, granted bool) error {
	return p.record(publishedEvent{kind: "access", address: address, granted: granted})
}

func (p *recordingPublisher) record(e publishedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.kind)
	}
	return out
}

type testWallet struct {
	key     *ecdsa.PrivateKey
	address string // checksummed
}

func newTestWallet(t *testing.T) testWallet {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return testWallet{key: key, address: crypto.PubkeyToAddress(key.PublicKey).Hex()}
}

func (w testWallet) lower() string { return strings.ToLower(w.address) }

func (w testWallet) sign(t *testing.T, message string) string {
	t.Helper()
	sig, err := eth.SignMessage(w.key, []byte(message))
	require.NoError(t, err)
	return sig
}

type authFixture struct {
	svc      *AuthService
	accounts *store.MemoryAccountStore
	pub      *recordingPublisher
}

func newAuthFixture(t *testing.T, opts ...AuthOption) authFixture {
	t.Helper()

	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	accounts := store.NewMemoryAccountStore()
	pub := &recordingPublisher{}
	svc := NewAuthService(accounts, tokenizer.NewJWTTokenizer(signKey, "walletgate-test"), store.NewMemoryStore(), pub, opts...)

	return authFixture{svc: svc, accounts: accounts, pub: pub}
}
