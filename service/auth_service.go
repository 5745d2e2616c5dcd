package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/internal/eth"
	"github.com/layer-3/walletgate/internal/nonce"
	"github.com/layer-3/walletgate/internal/siwe"
	"github.com/layer-3/walletgate/ports"
)

// AuthService handles wallet sign-in and session credentials
type AuthService struct {
	accounts  ports.AccountStore
	tokenizer ports.Tokenizer
	store     ports.Store
	eventPub  ports.EventPublisher
	nonces    ports.NonceSource
	log       *zap.Logger
	now       func() time.Time

	domain      string
	uri         string
	greeting    string
	sessionTTL  time.Duration
	rotateNonce bool
}

// AuthOption configures an AuthService
type AuthOption func(*AuthService)

// WithLogger sets the service logger
func WithLogger(log *zap.Logger) AuthOption {
	return func(s *AuthService) { s.log = log }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// WithNonceSource overrides the nonce generator
func WithNonceSource(src ports.NonceSource) AuthOption {
	return func(s *AuthService) { s.nonces = src }
}

// WithMessageFields sets the domain, URI and greeting embedded in challenge messages.
// Empty values keep the defaults.
func WithMessageFields(domain, uri, greeting string) AuthOption {
	return func(s *AuthService) {
		if domain != "" {
			s.domain = domain
		}
		if uri != "" {
			s.uri = uri
		}
		if greeting != "" {
			s.greeting = greeting
		}
	}
}

// WithSessionTTL sets the lifetime of issued session tokens
func WithSessionTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithNonceRotation replaces the pending nonce after every successful login
func WithNonceRotation(enabled bool) AuthOption {
	return func(s *AuthService) { s.rotateNonce = enabled }
}

// NewAuthService creates a new authentication service
func NewAuthService(
	accounts ports.AccountStore,
	tokenizer ports.Tokenizer,
	store ports.Store,
	eventPub ports.EventPublisher,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		accounts:   accounts,
		tokenizer:  tokenizer,
		store:      store,
		eventPub:   eventPub,
		nonces:     nonce.NewGenerator(nonce.DefaultLength),
		log:        zap.NewNop(),
		now:        time.Now,
		domain:     siwe.DefaultDomain,
		uri:        siwe.DefaultURI,
		greeting:   siwe.DefaultGreeting,
		sessionTTL: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueChallenge stores a fresh nonce for the wallet and returns the message it must sign.
// The account is created with the user role on first contact.
func (s *AuthService) IssueChallenge(ctx context.Context, walletAddress string) (*core.Challenge, error) {
	address := core.NormalizeAddress(walletAddress)

	n, err := s.nonces.Nonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	if err := s.storeNonce(ctx, address, n); err != nil {
		return nil, err
	}

	issuedAt := s.now()
	msg := siwe.Message{
		Domain:   s.domain,
		Address:  address,
		Greeting: s.greeting,
		URI:      s.uri,
		Nonce:    n,
		IssuedAt: issuedAt,
	}

	s.log.Debug("challenge issued", zap.String("address", address))

	return &core.Challenge{
		WalletAddress: address,
		Nonce:         n,
		Message:       msg.String(),
		IssuedAt:      issuedAt,
	}, nil
}

func (s *AuthService) storeNonce(ctx context.Context, address, n string) error {
	_, err := s.accounts.FindByAddress(ctx, address)
	switch {
	case err == nil:
		if err := s.accounts.UpdateNonce(ctx, address, n); err != nil {
			return fmt.Errorf("failed to update nonce: %w", err)
		}
		return nil
	case !errors.Is(err, core.ErrAccountNotFound):
		return fmt.Errorf("failed to find account: %w", err)
	}

	now := s.now()
	err = s.accounts.Create(ctx, &core.Account{
		ID:            uuid.New().String(),
		WalletAddress: address,
		PendingNonce:  n,
		Role:          core.RoleUser,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if errors.Is(err, core.ErrAccountExists) {
		// Another request created the account between lookup and insert
		if err := s.accounts.UpdateNonce(ctx, address, n); err != nil {
			return fmt.Errorf("failed to update nonce: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// Authenticate verifies a signed challenge message and issues a session token
func (s *AuthService) Authenticate(ctx context.Context, signature, message string) (*core.LoginResult, error) {
	claimed, ok := siwe.ExtractAddress(message)
	if !ok {
		return nil, core.ErrMalformedChallenge
	}
	msgNonce, ok := siwe.ExtractNonce(message)
	if !ok {
		return nil, core.ErrMalformedChallenge
	}

	match, err := eth.VerifyAddress([]byte(message), signature, claimed)
	if err != nil || !match {
		s.log.Debug("signature rejected", zap.String("address", claimed), zap.Error(err))
		return nil, core.ErrInvalidCredential
	}

	address := core.NormalizeAddress(claimed)
	account, err := s.accounts.FindByAddress(ctx, address)
	if errors.Is(err, core.ErrAccountNotFound) {
		return nil, core.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if account.PendingNonce != msgNonce {
		return nil, core.ErrNonceMismatch
	}

	var nextNonce string
	if s.rotateNonce {
		if nextNonce, err = s.nonces.Nonce(); err != nil {
			return nil, fmt.Errorf("failed to generate nonce: %w", err)
		}
	}

	now := s.now()
	session := &core.Session{
		ID:            uuid.New().String(),
		AccountID:     account.ID,
		Email:         account.Email,
		Role:          account.Role,
		WalletAddress: address,
		Nonce:         msgNonce,
		IssuedAt:      now,
		ExpiresAt:     now.Add(s.sessionTTL),
	}

	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}

	// Last login and the optional nonce rotation land in one write
	if err := s.accounts.RecordLogin(ctx, address, now, nextNonce); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	account.LastLogin = &now

	if err := s.eventPub.PublishLogin(ctx, address, account.ID); err != nil {
		s.log.Warn("failed to publish login event", zap.String("address", address), zap.Error(err))
	}

	s.log.Info("wallet authenticated", zap.String("address", address), zap.String("account_id", account.ID))

	return &core.LoginResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Account:   account.Summary(),
	}, nil
}

// Logout revokes a session token for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, token string) error {
	session, err := s.tokenizer.TokenToSession(token)
	if errors.Is(err, core.ErrTokenExpired) {
		return nil
	}
	if err != nil {
		return err
	}

	remaining := session.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return nil
	}

	if err := s.store.InvalidateToken(ctx, session.ID, remaining); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}

	// The token is already revoked in the store; the event is only a notification
	if err := s.eventPub.PublishLogout(ctx, session.WalletAddress, session.ID); err != nil {
		s.log.Warn("failed to publish logout event", zap.String("address", session.WalletAddress), zap.Error(err))
	}

	return nil
}

// ValidateSessionToken parses a session token and rejects expired or revoked ones
func (s *AuthService) ValidateSessionToken(ctx context.Context, token string) (*core.Session, error) {
	session, err := s.tokenizer.TokenToSession(token)
	if err != nil {
		return nil, err
	}

	if session.Expired(s.now()) {
		return nil, core.ErrTokenExpired
	}

	invalidated, err := s.store.IsTokenInvalidated(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token invalidation: %w", err)
	}
	if invalidated {
		return nil, core.ErrTokenInvalidated
	}

	return session, nil
}

// Account returns the stored account for a wallet address
func (s *AuthService) Account(ctx context.Context, walletAddress string) (*core.Account, error) {
	return s.accounts.FindByAddress(ctx, walletAddress)
}

// Promote sets the role of an existing account
func (s *AuthService) Promote(ctx context.Context, walletAddress string, role core.Role) error {
	if !role.Valid() {
		return core.ErrInvalidRole
	}
	if err := s.accounts.UpdateRole(ctx, walletAddress, role); err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return err
		}
		return fmt.Errorf("failed to update role: %w", err)
	}
	s.log.Info("account role changed", zap.String("address", core.NormalizeAddress(walletAddress)), zap.String("role", string(role)))
	return nil
}
