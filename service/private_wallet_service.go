package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
)

// PrivateWalletService manages the admin-controlled allow-list of wallets
type PrivateWalletService struct {
	grants   ports.GrantStore
	eventPub ports.EventPublisher
	log      *zap.Logger
	now      func() time.Time
}

func NewPrivateWalletService(grants ports.GrantStore, eventPub ports.EventPublisher, log *zap.Logger) *PrivateWalletService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PrivateWalletService{grants: grants, eventPub: eventPub, log: log, now: time.Now}
}

// Grant adds address to the allow-list on behalf of admin
func (s *PrivateWalletService) Grant(ctx context.Context, admin *core.Session, address string) (*core.PrivateWallet, error) {
	if admin == nil || admin.Role != core.RoleAdmin {
		return nil, core.ErrForbidden
	}

	grant := &core.PrivateWallet{
		ID:            uuid.New().String(),
		WalletAddress: core.NormalizeAddress(address),
		GrantedBy:     admin.AccountID,
		CreatedAt:     s.now(),
	}
	if err := s.grants.CreateGrant(ctx, grant); err != nil {
		return nil, err
	}

	s.publish(ctx, grant.WalletAddress, true)
	return grant, nil
}

// Revoke removes address from the allow-list
func (s *PrivateWalletService) Revoke(ctx context.Context, address string) error {
	address = core.NormalizeAddress(address)
	if err := s.grants.DeleteGrant(ctx, address); err != nil {
		return err
	}
	s.publish(ctx, address, false)
	return nil
}

func (s *PrivateWalletService) List(ctx context.Context) ([]core.PrivateWallet, error) {
	return s.grants.ListGrants(ctx)
}

// HasAccess reports whether address is on the allow-list
func (s *PrivateWalletService) HasAccess(ctx context.Context, address string) (bool, error) {
	_, err := s.grants.FindGrant(ctx, address)
	if errors.Is(err, core.ErrGrantNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check grant: %w", err)
	}
	return true, nil
}

func (s *PrivateWalletService) publish(ctx context.Context, address string, granted bool) {
	if err := s.eventPub.PublishAccessChanged(ctx, address, granted); err != nil {
		s.log.Warn("failed to publish access change", zap.String("address", address), zap.Error(err))
	}
	s.log.Info("private wallet access changed", zap.String("address", address), zap.Bool("granted", granted))
}
