package ports

import "context"

// EventPublisher publishes events to notify other instances
type EventPublisher interface {
	PublishLogin(ctx context.Context, address string, accountID string) error
	PublishLogout(ctx context.Context, address string, tokenID string) error
	PublishAccessChanged(ctx context.Context, address string, granted bool) error
}
