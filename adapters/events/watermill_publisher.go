package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/layer-3/walletgate/ports"
)

const (
	TopicLogin         = "walletgate.login"
	TopicLogout        = "walletgate.logout"
	TopicAccessChanged = "walletgate.access_changed"
)

// LoginEvent is published after a successful wallet sign-in
type LoginEvent struct {
	Address   string    `json:"address"`
	AccountID string    `json:"account_id"`
	At        time.Time `json:"at"`
}

// LogoutEvent represents a logout event
type LogoutEvent struct {
	Address string    `json:"address"`
	TokenID string    `json:"token_id"`
	At      time.Time `json:"at"`
}

// AccessChangedEvent is published when a private wallet grant is added or removed
type AccessChangedEvent struct {
	Address string    `json:"address"`
	Granted bool      `json:"granted"`
	At      time.Time `json:"at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	now       func() time.Time
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		now:       time.Now,
	}
}

// PublishLogin publishes a login event
func (p *WatermillPublisher) PublishLogin(ctx context.Context, address string, accountID string) error {
	return p.publish(ctx, TopicLogin, LoginEvent{
		Address:   address,
		AccountID: accountID,
		At:        p.now(),
	})
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, address string, tokenID string) error {
	return p.publish(ctx, TopicLogout, LogoutEvent{
		Address: address,
		TokenID: tokenID,
		At:      p.now(),
	})
}

// PublishAccessChanged publishes a grant or revoke of private wallet access
func (p *WatermillPublisher) PublishAccessChanged(ctx context.Context, address string, granted bool) error {
	return p.publish(ctx, TopicAccessChanged, AccessChangedEvent{
		Address: address,
		Granted: granted,
		At:      p.now(),
	})
}

func (p *WatermillPublisher) publish(ctx context.Context, topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", topic, err)
	}

	return nil
}
